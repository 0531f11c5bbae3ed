package core

import (
	"context"
	"fmt"
	"path/filepath"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/types"
)

// PackageBuilder runs the patch-and-build procedure for a single package
// of a source tree.
type PackageBuilder struct {
	Workspace  ports.WorkspacePort
	SourceTree ports.SourceTreePort
	Packaging  ports.PackagingPort
	Artifacts  ports.ArtifactStorePort
}

func NewPackageBuilder(workspace ports.WorkspacePort, tree ports.SourceTreePort, packaging ports.PackagingPort, artifacts ports.ArtifactStorePort) PackageBuilder {
	return PackageBuilder{
		Workspace:  workspace,
		SourceTree: tree,
		Packaging:  packaging,
		Artifacts:  artifacts,
	}
}

// Locate finds the first manifest named opts.PackageName. A missing
// package is an error unless opts.AllowMissing is set.
func (b PackageBuilder) Locate(ctx context.Context, opts types.BuildOptions) (types.Manifest, bool, error) {
	assert.NotEmpty(ctx, opts.PackageName, "package name must be set")
	assert.NotEmpty(ctx, opts.RepoPath, "repo path must be set")

	manifest, found, err := b.Workspace.FindPackage(opts.RepoPath, opts.PackageName)
	if err != nil {
		return types.Manifest{}, false, err
	}
	if found {
		log.Ctx(ctx).Info().
			Str("package", manifest.Name).
			Str("dir", manifest.Dir).
			Msg("package located")
		return manifest, true, nil
	}
	if opts.AllowMissing {
		log.Ctx(ctx).Warn().
			Str("package", opts.PackageName).
			Str("repo", opts.RepoPath).
			Msg("package not found in source tree; nothing to build")
		return types.Manifest{}, false, nil
	}
	return types.Manifest{}, false, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("package %s not found in %s", opts.PackageName, opts.RepoPath))
}

// Prepare locates the package, removes stale packaging metadata and build
// caches, and applies the source rewrites required on the target
// distribution.
func (b PackageBuilder) Prepare(ctx context.Context, opts types.BuildOptions) (types.PatchOutcome, error) {
	manifest, found, err := b.Locate(ctx, opts)
	if err != nil || !found {
		return types.PatchOutcome{Found: false}, err
	}
	outcome := types.PatchOutcome{Manifest: manifest, Found: true}

	if err := b.SourceTree.Clean(manifest.Dir); err != nil {
		return outcome, err
	}

	descriptor := filepath.Join(manifest.Dir, types.DescriptorFile)
	changed, err := b.SourceTree.RewriteFile(descriptor, RaiseCXXStandard)
	if err != nil {
		return outcome, err
	}
	if changed {
		outcome.Changed = append(outcome.Changed, descriptor)
	}

	dropped := opts.DropRunDepends
	changed, err = b.SourceTree.RewriteFile(manifest.Path, func(content string) string {
		return DropRunDepends(content, dropped)
	})
	if err != nil {
		return outcome, err
	}
	if changed {
		outcome.Changed = append(outcome.Changed, manifest.Path)
	}

	log.Ctx(ctx).Debug().
		Str("package", manifest.Name).
		Strs("changed", outcome.Changed).
		Msg("sources patched")
	return outcome, nil
}

// Build runs Prepare followed by descriptor generation, the binary build,
// local installation and relocation of the produced artifacts. The first
// failing step aborts the run; patches already applied stay in place.
func (b PackageBuilder) Build(ctx context.Context, opts types.BuildOptions) (types.BuildOutcome, error) {
	patched, err := b.Prepare(ctx, opts)
	if err != nil || !patched.Found {
		return types.BuildOutcome{PatchOutcome: patched}, err
	}
	outcome := types.BuildOutcome{PatchOutcome: patched}
	pkgDir := patched.Manifest.Dir

	if err := b.Packaging.Generate(ctx, pkgDir, opts.Platform); err != nil {
		return outcome, err
	}

	if patched.Manifest.Name == opts.ToolingPackage {
		rules := filepath.Join(pkgDir, types.MetadataDir, "rules")
		seen := false
		changed, err := b.SourceTree.RewriteFile(rules, func(content string) string {
			seen = HasSetupBundleSwitch(content)
			return EnableSetupBundling(content)
		})
		if err != nil {
			return outcome, err
		}
		if !seen {
			log.Ctx(ctx).Warn().
				Str("rules", rules).
				Msg("catkin binary-package switch not found in generated rules")
		}
		if changed {
			outcome.Changed = append(outcome.Changed, rules)
		}
	}

	if err := b.Packaging.BuildBinary(ctx, pkgDir, opts.Jobs); err != nil {
		return outcome, err
	}

	artifacts, err := b.Packaging.CollectArtifacts(pkgDir)
	if err != nil {
		return outcome, err
	}
	if len(artifacts) == 0 {
		return outcome, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("packaging backend produced no artifacts for %s", patched.Manifest.Name))
	}

	if opts.SkipInstall {
		log.Ctx(ctx).Warn().Msg("skipping local install of built artifacts")
	} else if err := b.Packaging.Install(ctx, artifacts); err != nil {
		return outcome, err
	}

	relocated, err := b.Artifacts.Relocate(artifacts, opts.OutputDir)
	if err != nil {
		return outcome, err
	}
	outcome.Artifacts = relocated

	log.Ctx(ctx).Info().
		Str("package", patched.Manifest.Name).
		Int("artifacts", len(relocated)).
		Str("output", opts.OutputDir).
		Msg("package built")
	return outcome, nil
}
