package types

// FarmConfig is the optional generator input file.
type FarmConfig struct {
	Targets      []string `yaml:"targets"`
	ROSDistro    string   `yaml:"ros_distro,omitempty"`
	UbuntuDistro string   `yaml:"ubuntu_distro,omitempty"`
	RosdistroURL string   `yaml:"rosdistro_url,omitempty"`

	// RepositoryOverrides replace the source url/branch of a released
	// repository, keyed by repository name.
	RepositoryOverrides map[string]RepositoryOverride `yaml:"repository_overrides,omitempty"`

	ExtraAptPackages  []string `yaml:"extra_apt_packages,omitempty"`
	IgnoreAptPackages []string `yaml:"ignore_apt_packages,omitempty"`
}

type RepositoryOverride struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
	Reason string `yaml:"reason,omitempty"`
}

// DependencyClasses splits the walked dependency set by how each key is
// satisfied inside the build image.
type DependencyClasses struct {
	Base   []string
	Python []string
	Build  []string
}

// MakeTarget is one rule of the generated Makefile.
type MakeTarget struct {
	Target   string
	Depends  []string
	Commands []string
	Comment  string
	Phony    bool
	Alias    string
}
