package app

import (
	"context"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"noetic-jammy/internal/core"
	"noetic-jammy/internal/types"
)

func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	opts, err := buildOptions(req)
	if err != nil {
		return BuildResult{}, err
	}
	outcome, err := s.builder().Build(ctx, opts)
	return BuildResult{
		Manifest:  outcome.Manifest,
		Found:     outcome.Found,
		Changed:   outcome.Changed,
		Artifacts: outcome.Artifacts,
		OutputDir: opts.OutputDir,
	}, err
}

func (s Service) builder() core.PackageBuilder {
	return core.NewPackageBuilder(s.Workspace, s.SourceTree, s.Packaging, s.Artifacts)
}

// buildOptions validates a request and fills the Noetic-on-Jammy defaults.
func buildOptions(req BuildRequest) (types.BuildOptions, error) {
	repo := strings.TrimSpace(req.RepoPath)
	if repo == "" {
		return types.BuildOptions{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository path is required")
	}
	info, err := os.Stat(repo)
	if err != nil || !info.IsDir() {
		return types.BuildOptions{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository path is not a directory: " + repo)
	}
	name := strings.TrimSpace(req.PackageName)
	if name == "" {
		return types.BuildOptions{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package name is required")
	}
	if req.Jobs < 0 {
		return types.BuildOptions{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("jobs must not be negative")
	}

	platform := types.DefaultPlatform()
	if v := strings.TrimSpace(req.OSName); v != "" {
		platform.OSName = v
	}
	if v := strings.TrimSpace(req.OSVersion); v != "" {
		platform.OSVersion = v
	}
	if v := strings.TrimSpace(req.ROSDistro); v != "" {
		platform.ROSDistro = v
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = types.DefaultOutputDir
	}
	dropped := req.DropRunDepends
	if dropped == nil {
		dropped = types.DefaultDroppedRunDepends()
	}
	return types.BuildOptions{
		RepoPath:       repo,
		PackageName:    name,
		OutputDir:      outputDir,
		Jobs:           req.Jobs,
		Platform:       platform,
		DropRunDepends: dropped,
		ToolingPackage: types.DefaultToolingPackage,
		AllowMissing:   req.AllowMissing,
		SkipInstall:    req.SkipInstall,
	}, nil
}
