package app

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/core"
	"noetic-jammy/internal/types"
)

const (
	defaultEnvDir   = "docker"
	defaultCacheDir = "cache"
	rosdepOSName    = "ubuntu"
)

// GenerateEnv resolves the source build set of the requested targets and
// writes rosdep.yaml, Makefile and Dockerfile for the build image.
func (s Service) GenerateEnv(ctx context.Context, req GenerateEnvRequest) (GenerateEnvResult, error) {
	logger := log.Ctx(ctx)
	cfg := types.FarmConfig{}
	if path := strings.TrimSpace(req.FarmConfigPath); path != "" {
		loaded, err := s.FarmConfig.LoadFarmConfig(path)
		if err != nil {
			return GenerateEnvResult{}, err
		}
		cfg = loaded
	}
	if len(req.Targets) > 0 {
		cfg.Targets = req.Targets
	}
	if url := strings.TrimSpace(req.RosdistroURL); url != "" {
		cfg.RosdistroURL = url
	}
	cfg = core.MergeFarmConfig(cfg)
	if err := core.NewFarmConfigValidator().Validate(ctx, cfg); err != nil {
		return GenerateEnvResult{}, err
	}

	cacheDir := strings.TrimSpace(req.CacheDir)
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}
	source := s.Rosdistro(cfg.RosdistroURL, cacheDir)
	cache, err := source.Cache(ctx, cfg.ROSDistro)
	if err != nil {
		return GenerateEnvResult{}, err
	}
	base, err := source.RosdepBase(ctx)
	if err != nil {
		return GenerateEnvResult{}, err
	}
	python, err := source.RosdepPython(ctx)
	if err != nil {
		return GenerateEnvResult{}, err
	}

	walker := core.NewDependencyWalker(cache, core.NoeticConditionEnv())
	deps, err := walker.Walk(ctx, cfg.Targets)
	if err != nil {
		return GenerateEnvResult{}, err
	}
	classes := core.Classify(deps, base, python)
	buildSet := unionSorted(classes.Build, cfg.Targets)
	aptNames := unionSorted(
		core.AptPackageNames(ctx, classes.Base, base, rosdepOSName, cfg.UbuntuDistro),
		core.AptPackageNames(ctx, classes.Python, python, rosdepOSName, cfg.UbuntuDistro),
	)
	logger.Info().
		Int("dependencies", len(deps)).
		Int("base", len(classes.Base)).
		Int("python", len(classes.Python)).
		Int("build", len(buildSet)).
		Int("apt", len(aptNames)).
		Msg("dependencies classified")

	inBuild := make(map[string]struct{}, len(buildSet))
	for _, name := range buildSet {
		inBuild[name] = struct{}{}
	}
	packages := make([]core.BuildPackage, 0, len(buildSet))
	for _, name := range buildSet {
		repo, err := core.FindRepository(cache, name, cfg.RepositoryOverrides)
		if err != nil {
			return GenerateEnvResult{}, err
		}
		direct, err := walker.Direct(ctx, name)
		if err != nil {
			return GenerateEnvResult{}, err
		}
		var depends []string
		for _, dep := range direct {
			if _, ok := inBuild[dep]; ok {
				depends = append(depends, dep)
			}
		}
		packages = append(packages, core.BuildPackage{Name: name, Repo: repo, Depends: depends})
	}

	builder := strings.TrimSpace(req.BuilderBinary)
	if builder == "" {
		self, err := s.Executable()
		if err != nil {
			return GenerateEnvResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to locate build binary").
				WithCause(err)
		}
		builder = self
	}
	builderName := filepath.Base(builder)
	layout := core.DefaultEnvLayout(cfg.ROSDistro)
	layout.Builder = builderName
	plan := core.PlanMakefile(ctx, layout, cfg.Targets, packages)
	dockerfile := core.RenderDockerfile(core.DockerfileInput{
		Codename:    cfg.UbuntuDistro,
		AptPackages: aptNames,
		Extra:       cfg.ExtraAptPackages,
		Ignore:      cfg.IgnoreAptPackages,
		Builder:     builderName,
	})

	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = defaultEnvDir
	}
	writer := s.EnvWriter(outputDir)
	var files []string
	path, err := writer.WriteRosdepYAML(core.RosdepEntries(cfg.ROSDistro, buildSet))
	if err != nil {
		return GenerateEnvResult{}, err
	}
	files = append(files, path)
	if path, err = writer.WriteMakefile(core.RenderMakefile(plan)); err != nil {
		return GenerateEnvResult{}, err
	}
	files = append(files, path)
	if path, err = writer.WriteDockerfile(dockerfile); err != nil {
		return GenerateEnvResult{}, err
	}
	files = append(files, path)
	if path, err = writer.CopyBuilder(builder); err != nil {
		return GenerateEnvResult{}, err
	}
	files = append(files, path)

	logger.Info().Str("dir", outputDir).Strs("files", files).Msg("build environment written")
	return GenerateEnvResult{
		Targets:       cfg.Targets,
		BuildPackages: buildSet,
		AptPackages:   aptNames,
		Files:         files,
	}, nil
}

func unionSorted(groups ...[]string) []string {
	set := map[string]struct{}{}
	for _, group := range groups {
		for _, name := range group {
			if name = strings.TrimSpace(name); name != "" {
				set[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
