package types

// Manifest is the parsed subset of a ROS package.xml that the build
// procedure needs.
type Manifest struct {
	// Path is the package.xml location.
	Path string

	// Dir is the package root (the directory holding Path).
	Dir string

	// Name is the text of /package/name.
	Name string

	Version    string
	RunDepends []string
}

// DependencyTag describes one dependency element of a released
// package.xml, including its attributes (condition, version_gte, ...).
type DependencyTag struct {
	Tag    string
	Name   string
	Attrib map[string]string
}
