package app

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"noetic-jammy/internal/adapters"
	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/types"
)

// fakePackaging records calls and writes a .deb next to the package root
// when asked to build, the way dh_builddeb does.
type fakePackaging struct {
	calls     []string
	installed []string
	failOn    string
	err       error
}

func (f *fakePackaging) Generate(ctx context.Context, pkgDir string, platform types.TargetPlatform) error {
	f.calls = append(f.calls, "generate")
	if f.failOn == "generate" {
		return f.err
	}
	if err := os.MkdirAll(filepath.Join(pkgDir, "debian"), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(pkgDir, "debian", "rules"), []byte("-DCATKIN_BUILD_BINARY_PACKAGE=\"1\"\n"), 0755)
}

func (f *fakePackaging) BuildBinary(ctx context.Context, pkgDir string, jobs int) error {
	f.calls = append(f.calls, "build")
	if f.failOn == "build" {
		return f.err
	}
	name := "ros-noetic-" + filepath.Base(pkgDir) + "_1.0.0-0jammy_amd64.deb"
	return os.WriteFile(filepath.Join(filepath.Dir(pkgDir), name), []byte("deb"), 0644)
}

func (f *fakePackaging) CollectArtifacts(pkgDir string) ([]string, error) {
	return adapters.NewPackagingAdapter(nil).CollectArtifacts(pkgDir)
}

func (f *fakePackaging) Install(ctx context.Context, artifacts []string) error {
	f.calls = append(f.calls, "install")
	f.installed = append(f.installed, artifacts...)
	return nil
}

func newTestService(packaging ports.PackagingPort) Service {
	service := NewService()
	service.Packaging = packaging
	return service
}

type fakeArtifacts struct {
	paths []string
}

func (f fakeArtifacts) Relocate(artifacts []string, outputDir string) ([]string, error) {
	return artifacts, nil
}

func (f fakeArtifacts) List(dir string) ([]string, error) {
	return f.paths, nil
}

type fakeDebReader struct {
	controls map[string]types.ControlInfo
}

func (f fakeDebReader) ReadControl(path string) (types.ControlInfo, error) {
	return f.controls[path], nil
}

type fakeRosdistro struct {
	cache  types.DistributionCache
	base   types.RosdepDB
	python types.RosdepDB
}

func (f fakeRosdistro) Index(ctx context.Context) (types.RosdistroIndex, error) {
	return types.RosdistroIndex{}, nil
}

func (f fakeRosdistro) Cache(ctx context.Context, distro string) (types.DistributionCache, error) {
	return f.cache, nil
}

func (f fakeRosdistro) RosdepBase(ctx context.Context) (types.RosdepDB, error) {
	return f.base, nil
}

func (f fakeRosdistro) RosdepPython(ctx context.Context) (types.RosdepDB, error) {
	return f.python, nil
}

type fakeEnvWriter struct {
	rosdep     map[string]string
	makefile   string
	dockerfile string
	builder    string
}

func (f *fakeEnvWriter) WriteRosdepYAML(entries map[string]string) (string, error) {
	f.rosdep = entries
	return "docker/rosdep.yaml", nil
}

func (f *fakeEnvWriter) WriteMakefile(content string) (string, error) {
	f.makefile = content
	return "docker/Makefile", nil
}

func (f *fakeEnvWriter) WriteDockerfile(content string) (string, error) {
	f.dockerfile = content
	return "docker/Dockerfile", nil
}

func (f *fakeEnvWriter) CopyBuilder(binary string) (string, error) {
	f.builder = binary
	return filepath.Join("docker", filepath.Base(binary)), nil
}

func sortedMapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
