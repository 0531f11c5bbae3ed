package types

// Artifact is a binary package file and the control metadata read from it.
type Artifact struct {
	Path    string
	Control ControlInfo
}

// ControlInfo holds the control-file fields inspect reports on.
type ControlInfo struct {
	Package      string
	Version      string
	Architecture string
	Maintainer   string
	Depends      []string
	Description  string
	Extra        map[string]string
}
