package app

import (
	"context"
	"sort"
	"strings"

	debversion "github.com/knqyf263/go-deb-version"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/shared"
	"noetic-jammy/internal/types"
)

// Inspect reads the control data of every binary package in a directory.
// Package matches either the Debian package name or the ROS package name.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	dir := strings.TrimSpace(req.Dir)
	if dir == "" {
		dir = types.DefaultOutputDir
	}
	paths, err := s.Artifacts.List(dir)
	if err != nil {
		return InspectResult{}, err
	}
	filter := strings.TrimSpace(req.Package)
	var artifacts []types.Artifact
	for _, path := range paths {
		control, err := s.DebReader.ReadControl(path)
		if err != nil {
			return InspectResult{}, err
		}
		if filter != "" && !matchesPackage(control.Package, filter) {
			continue
		}
		artifacts = append(artifacts, types.Artifact{Path: path, Control: control})
	}
	sortArtifacts(artifacts)
	log.Ctx(ctx).Debug().
		Str("dir", dir).
		Int("artifacts", len(artifacts)).
		Msg("artifacts inspected")
	return InspectResult{Dir: dir, Artifacts: artifacts}, nil
}

func matchesPackage(debName string, filter string) bool {
	return debName == filter || debName == shared.DebPackageName(types.DefaultROSDistro, filter)
}

// sortArtifacts orders by package name, then by Debian version. Versions
// that do not parse sort as plain strings.
func sortArtifacts(artifacts []types.Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		a, b := artifacts[i].Control, artifacts[j].Control
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		va, errA := debversion.NewVersion(a.Version)
		vb, errB := debversion.NewVersion(b.Version)
		if errA != nil || errB != nil {
			return a.Version < b.Version
		}
		return va.Compare(vb) < 0
	})
}
