package adapters

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/types"
)

type PackageXMLAdapter struct {
	mu    sync.Mutex
	cache map[string]packageXMLCacheEntry
}

func NewPackageXMLAdapter() *PackageXMLAdapter {
	return &PackageXMLAdapter{cache: map[string]packageXMLCacheEntry{}}
}

// packageXML binds the root element, so documents whose root is not
// <package> fail to parse.
type packageXML struct {
	XMLName    xml.Name       `xml:"package"`
	Name       string         `xml:"name"`
	Version    string         `xml:"version"`
	RunDepend  []simpleDepend `xml:"run_depend"`
	ExecDepend []simpleDepend `xml:"exec_depend"`
}

type simpleDepend struct {
	Value string `xml:",chardata"`
}

type packageXMLCacheEntry struct {
	modTime  time.Time
	manifest types.Manifest
}

func (a *PackageXMLAdapter) ParsePackageName(path string) (string, error) {
	entry, err := a.loadPackageXML(path)
	if err != nil {
		return "", err
	}
	return entry.manifest.Name, nil
}

func (a *PackageXMLAdapter) ParseManifest(path string) (types.Manifest, error) {
	entry, err := a.loadPackageXML(path)
	if err != nil {
		return types.Manifest{}, err
	}
	manifest := entry.manifest
	manifest.RunDepends = append([]string(nil), entry.manifest.RunDepends...)
	return manifest, nil
}

func (a *PackageXMLAdapter) loadPackageXML(path string) (packageXMLCacheEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return packageXMLCacheEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read package.xml").
			WithCause(err)
	}
	a.mu.Lock()
	if entry, ok := a.cache[path]; ok && entry.modTime.Equal(info.ModTime()) {
		a.mu.Unlock()
		return entry, nil
	}
	a.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return packageXMLCacheEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read package.xml").
			WithCause(err)
	}
	var pkg packageXML
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return packageXMLCacheEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse package.xml").
			WithCause(err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	entry := packageXMLCacheEntry{
		modTime: info.ModTime(),
		manifest: types.Manifest{
			Path:    abs,
			Dir:     filepath.Dir(abs),
			Name:    strings.TrimSpace(pkg.Name),
			Version: strings.TrimSpace(pkg.Version),
		},
	}
	for _, group := range [][]simpleDepend{pkg.RunDepend, pkg.ExecDepend} {
		for _, dep := range group {
			if value := strings.TrimSpace(dep.Value); value != "" {
				entry.manifest.RunDepends = append(entry.manifest.RunDepends, value)
			}
		}
	}

	a.mu.Lock()
	a.cache[path] = entry
	a.mu.Unlock()
	return entry, nil
}

var _ ports.PackageXMLPort = (*PackageXMLAdapter)(nil)
