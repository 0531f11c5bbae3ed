package app

import (
	"os"

	"noetic-jammy/internal/adapters"
	"noetic-jammy/internal/ports"
)

type Service struct {
	Workspace  ports.WorkspacePort
	SourceTree ports.SourceTreePort
	Packaging  ports.PackagingPort
	Artifacts  ports.ArtifactStorePort
	DebReader  ports.DebReaderPort
	FarmConfig ports.FarmConfigPort

	// Rosdistro and EnvWriter depend on request parameters.
	Rosdistro func(baseURL string, cacheDir string) ports.RosdistroPort
	EnvWriter func(dir string) ports.EnvWriterPort

	// Executable locates the running binary; gen-env ships it into the
	// build image when no other builder is given.
	Executable func() (string, error)
}

func NewService() Service {
	runner := adapters.NewExecRunner()
	return Service{
		Workspace:  adapters.NewWorkspaceAdapter(adapters.NewPackageXMLAdapter()),
		SourceTree: adapters.NewSourceTreeAdapter(),
		Packaging:  adapters.NewPackagingAdapter(runner),
		Artifacts:  adapters.NewArtifactStoreAdapter(),
		DebReader:  adapters.NewDebReaderAdapter(),
		FarmConfig: adapters.NewFarmConfigFileAdapter(),
		Rosdistro: func(baseURL string, cacheDir string) ports.RosdistroPort {
			return adapters.NewRosdistroHTTPAdapter(baseURL, cacheDir, 0, 0, os.Stderr)
		},
		EnvWriter: func(dir string) ports.EnvWriterPort {
			return adapters.NewEnvWriterAdapter(dir)
		},
		Executable: os.Executable,
	}
}
