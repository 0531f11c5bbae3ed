package adapters

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/types"
)

type FarmConfigFileAdapter struct{}

func NewFarmConfigFileAdapter() FarmConfigFileAdapter {
	return FarmConfigFileAdapter{}
}

// LoadFarmConfig reads a farm config yaml. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func (a FarmConfigFileAdapter) LoadFarmConfig(path string) (types.FarmConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errbuilder.CodeInternal
		if errors.Is(err, fs.ErrNotExist) {
			code = errbuilder.CodeNotFound
		}
		return types.FarmConfig{}, errbuilder.New().
			WithCode(code).
			WithMsg("farm config not readable").
			WithCause(err)
	}
	var cfg types.FarmConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return types.FarmConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse farm config yaml").
			WithCause(err)
	}
	return cfg, nil
}

var _ ports.FarmConfigPort = FarmConfigFileAdapter{}
