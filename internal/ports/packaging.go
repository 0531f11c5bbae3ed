package ports

import (
	"context"

	"noetic-jammy/internal/types"
)

// SourceTreePort performs the filesystem side of preparing a package root.
type SourceTreePort interface {
	// Clean removes generated packaging metadata and build caches.
	Clean(pkgDir string) error

	// RewriteFile applies rewrite to the file content and writes it back
	// only when it changed. It reports whether the file was modified.
	RewriteFile(path string, rewrite func(string) string) (bool, error)
}

// PackagingPort drives the external packaging toolchain for one package.
type PackagingPort interface {
	Generate(ctx context.Context, pkgDir string, platform types.TargetPlatform) error
	BuildBinary(ctx context.Context, pkgDir string, jobs int) error
	CollectArtifacts(pkgDir string) ([]string, error)
	Install(ctx context.Context, artifacts []string) error
}

// ArtifactStorePort moves built artifacts into the shared output directory.
type ArtifactStorePort interface {
	Relocate(artifacts []string, outputDir string) ([]string, error)
	List(dir string) ([]string, error)
}

// DebReaderPort reads control metadata from a binary package file.
type DebReaderPort interface {
	ReadControl(path string) (types.ControlInfo, error)
}
