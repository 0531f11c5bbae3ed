package types

const (
	ManifestFile     = "package.xml"
	DescriptorFile   = "CMakeLists.txt"
	MetadataDir      = "debian"
	BuildCacheGlob   = "obj-*"
	ArtifactGlob     = "*.deb"
	DefaultOutputDir = "/tmp/deb"

	// DefaultToolingPackage is the build-tooling package whose binary must
	// ship its environment setup scripts.
	DefaultToolingPackage = "catkin"
)

// DefaultDroppedRunDepends lists run dependencies that no longer exist in
// the target distribution's archive.
func DefaultDroppedRunDepends() []string {
	return []string{"hddtemp"}
}

// BuildOptions configures one run of the patch-and-build procedure.
type BuildOptions struct {
	RepoPath    string
	PackageName string
	OutputDir   string

	// Jobs is the compilation parallelism handed to the packaging backend.
	Jobs int

	Platform       TargetPlatform
	DropRunDepends []string
	ToolingPackage string
	AllowMissing   bool
	SkipInstall    bool
}

// PatchOutcome reports what preparing a package root changed.
type PatchOutcome struct {
	Manifest Manifest
	Found    bool
	Changed  []string
}

// BuildOutcome reports the result of a full build.
type BuildOutcome struct {
	PatchOutcome
	Artifacts []string
}
