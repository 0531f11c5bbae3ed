package types

// RosdistroIndex is the subset of index-v4.yaml the generator reads.
type RosdistroIndex struct {
	Type          string                           `yaml:"type"`
	Version       int                              `yaml:"version"`
	Distributions map[string]RosdistroDistribution `yaml:"distributions"`
}

type RosdistroDistribution struct {
	Distribution       []string `yaml:"distribution"`
	DistributionCache  string   `yaml:"distribution_cache"`
	DistributionType   string   `yaml:"distribution_type,omitempty"`
	DistributionStatus string   `yaml:"distribution_status,omitempty"`
}

// DistributionCache is the decompressed <distro>-cache.yaml.gz.
type DistributionCache struct {
	Type               string             `yaml:"type"`
	Version            int                `yaml:"version"`
	Name               string             `yaml:"name"`
	DistributionFile   []DistributionFile `yaml:"distribution_file"`
	ReleasePackageXMLs map[string]string  `yaml:"release_package_xmls"`
}

type DistributionFile struct {
	Type         string                            `yaml:"type,omitempty"`
	Version      int                               `yaml:"version,omitempty"`
	Repositories map[string]DistributionRepository `yaml:"repositories"`
}

type DistributionRepository struct {
	Release *RepositoryRelease `yaml:"release,omitempty"`
	Source  *RepositorySource  `yaml:"source,omitempty"`
	Status  string             `yaml:"status,omitempty"`
}

type RepositoryRelease struct {
	Packages []string `yaml:"packages,omitempty"`
	URL      string   `yaml:"url,omitempty"`
	Version  string   `yaml:"version,omitempty"`
}

type RepositorySource struct {
	Type    string `yaml:"type,omitempty"`
	URL     string `yaml:"url"`
	Version string `yaml:"version"`
}

// RosdepDB maps a rosdep key to its per-OS rule, e.g.
// {"ubuntu": {"jammy": ["libfoo-dev"], "*": ["libfoo-dev"]}}.
type RosdepDB map[string]map[string]any

// SourceRepository is a git repository holding one or more packages to
// build from source.
type SourceRepository struct {
	Name      string
	URL       string
	Branch    string
	Recursive bool
}
