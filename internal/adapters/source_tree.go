package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/types"
)

type SourceTreeAdapter struct{}

func NewSourceTreeAdapter() SourceTreeAdapter {
	return SourceTreeAdapter{}
}

// Clean removes the packaging metadata directory and every build cache
// directory directly under pkgDir. Missing entries are not an error.
func (a SourceTreeAdapter) Clean(pkgDir string) error {
	if pkgDir == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package directory is empty")
	}
	targets := []string{filepath.Join(pkgDir, types.MetadataDir)}
	caches, err := filepath.Glob(filepath.Join(pkgDir, types.BuildCacheGlob))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list build caches").
			WithCause(err)
	}
	targets = append(targets, caches...)
	for _, target := range targets {
		if err := os.RemoveAll(target); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to remove " + target).
				WithCause(err)
		}
		log.Debug().Str("path", target).Msg("removed")
	}
	return nil
}

func (a SourceTreeAdapter) RewriteFile(path string, rewrite func(string) string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		code := errbuilder.CodeInternal
		if errors.Is(err, fs.ErrNotExist) {
			code = errbuilder.CodeNotFound
		}
		return false, errbuilder.New().
			WithCode(code).
			WithMsg("failed to stat " + path).
			WithCause(err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read " + path).
			WithCause(err)
	}
	updated := rewrite(string(content))
	if updated == string(content) {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + path).
			WithCause(err)
	}
	log.Debug().Str("path", path).Msg("rewritten")
	return true, nil
}

var _ ports.SourceTreePort = SourceTreeAdapter{}
