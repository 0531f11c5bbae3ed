package adapters

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/types"
)

// PackagingAdapter drives bloom, the debian/rules backend and apt through
// a command runner.
type PackagingAdapter struct {
	Runner ports.CommandRunnerPort
}

func NewPackagingAdapter(runner ports.CommandRunnerPort) PackagingAdapter {
	return PackagingAdapter{Runner: runner}
}

func (a PackagingAdapter) Generate(ctx context.Context, pkgDir string, platform types.TargetPlatform) error {
	return a.Runner.Run(ctx, GenerateCommand(pkgDir, platform))
}

func (a PackagingAdapter) BuildBinary(ctx context.Context, pkgDir string, jobs int) error {
	return a.Runner.Run(ctx, BuildBinaryCommand(pkgDir, jobs))
}

// CollectArtifacts returns the binary packages dh_builddeb wrote next to
// the package root, as absolute paths.
func (a PackagingAdapter) CollectArtifacts(pkgDir string) ([]string, error) {
	abs, err := filepath.Abs(pkgDir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve package directory").
			WithCause(err)
	}
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(abs), types.ArtifactGlob))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list built artifacts").
			WithCause(err)
	}
	sort.Strings(matches)
	return matches, nil
}

func (a PackagingAdapter) Install(ctx context.Context, artifacts []string) error {
	if len(artifacts) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no artifacts to install")
	}
	return a.Runner.Run(ctx, InstallCommand(artifacts))
}

// GenerateCommand is the bloom invocation producing debian/ for the
// target platform.
func GenerateCommand(pkgDir string, platform types.TargetPlatform) types.Command {
	return types.Command{
		Name: "bloom-generate",
		Args: []string{
			"rosdebian",
			"--os-name", platform.OSName,
			"--os-version", platform.OSVersion,
			"--ros-distro", platform.ROSDistro,
		},
		Dir: pkgDir,
	}
}

// BuildBinaryCommand runs the generated rules file under fakeroot with the
// requested compile parallelism.
func BuildBinaryCommand(pkgDir string, jobs int) types.Command {
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	return types.Command{
		Name: "fakeroot",
		Args: []string{filepath.Join(types.MetadataDir, "rules"), "binary"},
		Dir:  pkgDir,
		Env:  []string{fmt.Sprintf("DEB_BUILD_OPTIONS=parallel=%d", jobs)},
	}
}

func InstallCommand(artifacts []string) types.Command {
	args := []string{"install", "-y", "--no-install-recommends"}
	for _, artifact := range artifacts {
		abs, err := filepath.Abs(artifact)
		if err != nil {
			abs = artifact
		}
		args = append(args, abs)
	}
	return types.Command{Name: "apt-get", Args: args}
}

var _ ports.PackagingPort = PackagingAdapter{}
