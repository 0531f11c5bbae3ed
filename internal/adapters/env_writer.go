package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"noetic-jammy/internal/ports"
)

// rosdepRule is one entry of the custom rosdep source.
type rosdepRule struct {
	Ubuntu string `yaml:"ubuntu"`
}

// EnvWriterAdapter writes the build environment files into Dir.
type EnvWriterAdapter struct {
	Dir string
}

func NewEnvWriterAdapter(dir string) EnvWriterAdapter {
	return EnvWriterAdapter{Dir: dir}
}

func (a EnvWriterAdapter) WriteRosdepYAML(entries map[string]string) (string, error) {
	path, err := a.ensurePath("rosdep.yaml")
	if err != nil {
		return "", err
	}
	doc := make(map[string]rosdepRule, len(entries))
	for key, pkg := range entries {
		doc[key] = rosdepRule{Ubuntu: pkg}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode rosdep.yaml").
			WithCause(err)
	}
	return path, writeEnvFile(path, data, 0o644)
}

func (a EnvWriterAdapter) WriteMakefile(content string) (string, error) {
	path, err := a.ensurePath("Makefile")
	if err != nil {
		return "", err
	}
	return path, writeEnvFile(path, []byte(content), 0o644)
}

func (a EnvWriterAdapter) WriteDockerfile(content string) (string, error) {
	path, err := a.ensurePath("Dockerfile")
	if err != nil {
		return "", err
	}
	return path, writeEnvFile(path, []byte(content), 0o644)
}

// CopyBuilder places the build binary next to the Dockerfile so the image
// can COPY it.
func (a EnvWriterAdapter) CopyBuilder(binary string) (string, error) {
	path, err := a.ensurePath(filepath.Base(binary))
	if err != nil {
		return "", err
	}
	srcAbs, _ := filepath.Abs(binary)
	destAbs, _ := filepath.Abs(path)
	if srcAbs == destAbs {
		return path, nil
	}
	if err := copyDebFile(binary, path); err != nil {
		return "", err
	}
	if err := os.Chmod(path, 0o755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to mark builder executable").
			WithCause(err)
	}
	return path, nil
}

func (a EnvWriterAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

func ensureParentDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create directory").
			WithCause(err)
	}
	return nil
}

func writeEnvFile(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, data, mode); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + filepath.Base(path)).
			WithCause(err)
	}
	return nil
}

var _ ports.EnvWriterPort = EnvWriterAdapter{}
