package ports

import "noetic-jammy/internal/types"

// PackageXMLPort parses package.xml files.
type PackageXMLPort interface {
	// ParseManifest reads the name, version and run dependencies of a
	// single package.xml.
	ParseManifest(path string) (types.Manifest, error)

	// ParsePackageName returns the text of /package/name.
	ParsePackageName(path string) (string, error)
}

// WorkspacePort locates packages within a source tree.
type WorkspacePort interface {
	// FindPackage returns the first manifest in traversal order whose
	// name equals name. found is false when no manifest matches. A
	// manifest that cannot be read aborts the lookup.
	FindPackage(root string, name string) (manifest types.Manifest, found bool, err error)
}
