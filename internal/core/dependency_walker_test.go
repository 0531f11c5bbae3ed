package core

import (
	"testing"

	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noetic-jammy/internal/types"
)

func releaseCache() types.DistributionCache {
	return types.DistributionCache{
		ReleasePackageXMLs: map[string]string{
			"desktop": `<package format="2">
  <name>desktop</name>
  <version>1.5.0</version>
  <exec_depend>roscpp</exec_depend>
  <exec_depend condition="$ROS_PYTHON_VERSION == 2">python-legacy</exec_depend>
  <exec_depend condition="$ROS_PYTHON_VERSION == 3">python3-yaml</exec_depend>
  <buildtool_depend>catkin</buildtool_depend>
</package>`,
			"roscpp": `<package format="2">
  <name>roscpp</name>
  <version>1.16.0</version>
  <depend version_gte="0.7.0">roscpp_core</depend>
  <build_depend>boost</build_depend>
  <exec_depend>desktop</exec_depend>
</package>`,
			"roscpp_core": `<package>
  <name>roscpp_core</name>
  <version>0.7.2</version>
  <buildtool_depend>catkin</buildtool_depend>
</package>`,
			"catkin": `<package format="2">
  <name>catkin</name>
  <version>0.8.10</version>
  <depend>python3-catkin-pkg</depend>
</package>`,
			"broken": `<package><name>broken`,
		},
	}
}

func TestDependencyWalkerDirect(t *testing.T) {
	walker := NewDependencyWalker(releaseCache(), nil)
	deps, err := walker.Direct(t.Context(), "desktop")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"catkin", "python3-yaml", "roscpp"}, deps); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestDependencyWalkerWalkTerminatesOnCycles(t *testing.T) {
	walker := NewDependencyWalker(releaseCache(), nil)
	deps, err := walker.Walk(t.Context(), []string{"desktop"})
	require.NoError(t, err)
	expected := []string{
		"boost",
		"catkin",
		"desktop",
		"python3-catkin-pkg",
		"python3-yaml",
		"roscpp",
		"roscpp_core",
	}
	if diff := cmp.Diff(expected, deps); diff != "" {
		t.Fatalf("unexpected closure (-want +got):\n%s", diff)
	}
}

func TestDependencyWalkerUnknownPackage(t *testing.T) {
	walker := NewDependencyWalker(releaseCache(), nil)
	deps, err := walker.Direct(t.Context(), "missing")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestDependencyWalkerBrokenXML(t *testing.T) {
	walker := NewDependencyWalker(releaseCache(), nil)
	_, err := walker.Direct(t.Context(), "broken")
	require.Error(t, err)
}

func TestDependencyWalkerPackageVersion(t *testing.T) {
	walker := NewDependencyWalker(releaseCache(), nil)
	version, ok := walker.PackageVersion("roscpp_core")
	require.True(t, ok)
	assert.Equal(t, "0.7.2", version)

	_, ok = walker.PackageVersion("missing")
	assert.False(t, ok)
}

func TestVersionBoundSatisfied(t *testing.T) {
	released := mustPEP440(t, "1.2.0")
	tests := []struct {
		bound    string
		required string
		want     bool
	}{
		{bound: "version_gte", required: "1.2.0", want: true},
		{bound: "version_gte", required: "1.3.0", want: false},
		{bound: "version_gt", required: "1.2.0", want: false},
		{bound: "version_gt", required: "1.1.9", want: true},
		{bound: "version_lt", required: "1.2.1", want: true},
		{bound: "version_lte", required: "1.1.0", want: false},
		{bound: "version_eq", required: "1.2.0", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.bound+" "+tt.required, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionBoundSatisfied(released, tt.bound, mustPEP440(t, tt.required)))
		})
	}
}

func mustPEP440(t *testing.T, raw string) pep440.Version {
	t.Helper()
	v, err := pep440.Parse(raw)
	require.NoError(t, err)
	return v
}
