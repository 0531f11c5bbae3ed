package ports

import (
	"context"

	"noetic-jammy/internal/types"
)

// RosdistroPort loads the public ROS release data for one distribution.
type RosdistroPort interface {
	Index(ctx context.Context) (types.RosdistroIndex, error)
	Cache(ctx context.Context, distro string) (types.DistributionCache, error)
	RosdepBase(ctx context.Context) (types.RosdepDB, error)
	RosdepPython(ctx context.Context) (types.RosdepDB, error)
}

// EnvWriterPort writes the generated build environment files.
type EnvWriterPort interface {
	WriteRosdepYAML(entries map[string]string) (string, error)
	WriteMakefile(content string) (string, error)
	WriteDockerfile(content string) (string, error)

	// CopyBuilder copies the build binary next to the generated files.
	CopyBuilder(binary string) (string, error)
}

// FarmConfigPort loads the optional generator input file.
type FarmConfigPort interface {
	LoadFarmConfig(path string) (types.FarmConfig, error)
}
