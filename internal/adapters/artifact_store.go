package adapters

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/ports"
)

type ArtifactStoreAdapter struct{}

func NewArtifactStoreAdapter() ArtifactStoreAdapter {
	return ArtifactStoreAdapter{}
}

// Relocate moves each artifact into outputDir, creating it when missing.
// An artifact already present there is replaced.
func (a ArtifactStoreAdapter) Relocate(artifacts []string, outputDir string) ([]string, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	moved := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		dest := filepath.Join(outputDir, filepath.Base(artifact))
		if err := moveFile(artifact, dest); err != nil {
			return moved, err
		}
		log.Debug().Str("from", artifact).Str("to", dest).Msg("artifact relocated")
		moved = append(moved, dest)
	}
	return moved, nil
}

func (a ArtifactStoreAdapter) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("artifact directory not found").
			WithCause(err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".deb") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// moveFile renames src to dest, falling back to copy and remove when the
// two live on different filesystems.
func moveFile(src string, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyDebFile(src, dest); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove relocated artifact").
			WithCause(err)
	}
	return nil
}

func copyDebFile(srcPath string, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open artifact").
			WithCause(err)
	}
	defer srcFile.Close()
	destFile, err := os.Create(destPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create destination artifact").
			WithCause(err)
	}
	if _, err := io.Copy(destFile, srcFile); err != nil {
		destFile.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy artifact").
			WithCause(err)
	}
	if err := destFile.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to flush artifact").
			WithCause(err)
	}
	return nil
}

var _ ports.ArtifactStorePort = ArtifactStoreAdapter{}
