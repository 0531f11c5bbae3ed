package app

import "noetic-jammy/internal/types"

type BuildRequest struct {
	RepoPath    string
	PackageName string
	OutputDir   string
	Jobs        int

	OSName    string
	OSVersion string
	ROSDistro string

	// DropRunDepends overrides the discontinued run dependencies removed
	// from package.xml; nil keeps the defaults.
	DropRunDepends []string
	AllowMissing   bool
	SkipInstall    bool
}

type BuildResult struct {
	Manifest  types.Manifest
	Found     bool
	Changed   []string
	Artifacts []string
	OutputDir string
}

type PatchRequest struct {
	RepoPath       string
	PackageName    string
	DropRunDepends []string
	AllowMissing   bool
}

type PatchResult struct {
	Manifest types.Manifest
	Found    bool
	Changed  []string
}

type InspectRequest struct {
	Dir     string
	Package string
}

type InspectResult struct {
	Dir       string
	Artifacts []types.Artifact
}

type GenerateEnvRequest struct {
	Targets        []string
	OutputDir      string
	CacheDir       string
	FarmConfigPath string
	RosdistroURL   string

	// BuilderBinary is copied next to the Dockerfile when set.
	BuilderBinary string
}

type GenerateEnvResult struct {
	Targets       []string
	BuildPackages []string
	AptPackages   []string
	Files         []string
}
