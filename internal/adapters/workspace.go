package adapters

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/types"
)

type WorkspaceAdapter struct {
	Manifests ports.PackageXMLPort
}

func NewWorkspaceAdapter(manifests ports.PackageXMLPort) WorkspaceAdapter {
	return WorkspaceAdapter{Manifests: manifests}
}

// FindPackage walks root in lexical order and stops at the first
// package.xml whose /package/name equals name. The walk stops at the
// first manifest that cannot be read or has no name, and its error is
// returned.
func (a WorkspaceAdapter) FindPackage(root string, name string) (types.Manifest, bool, error) {
	var (
		match types.Manifest
		found bool
		cause error
	)
	err := a.walk(root, func(path string) bool {
		pkgName, err := a.Manifests.ParsePackageName(path)
		if err != nil {
			cause = err
			return false
		}
		if pkgName == "" {
			cause = errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("package.xml has no package name: " + path)
			return false
		}
		if pkgName != name {
			log.Debug().Str("path", path).Str("package", pkgName).Msg("package.xml does not match")
			return true
		}
		manifest, err := a.Manifests.ParseManifest(path)
		if err != nil {
			cause = err
			return false
		}
		match = manifest
		found = true
		return false
	})
	if err != nil {
		return types.Manifest{}, false, err
	}
	if cause != nil {
		return types.Manifest{}, false, cause
	}
	return match, found, nil
}

// walk calls visit for each package.xml under root; visit returns false
// to stop the walk.
func (a WorkspaceAdapter) walk(root string, visit func(path string) bool) error {
	if root == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source tree root is empty")
	}
	info, err := os.Stat(root)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source tree root does not exist").
			WithCause(err)
	}
	if !info.IsDir() {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source tree root is not a directory")
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipSourceDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != types.ManifestFile {
			return nil
		}
		if !visit(path) {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan source tree").
			WithCause(err)
	}
	return nil
}

func shouldSkipSourceDir(name string) bool {
	switch name {
	case ".git", ".hg", ".svn":
		return true
	default:
		return false
	}
}

var _ ports.WorkspacePort = WorkspaceAdapter{}
