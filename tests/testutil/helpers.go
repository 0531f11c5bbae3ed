// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// BuildBinary compiles the noetic-jammy command into a temporary directory
// and returns its path.
func BuildBinary(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "noetic-jammy")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/noetic-jammy")
	cmd.Dir = RepoRoot(t)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return bin
}

// CatkinPackage describes a fixture package written by WriteCatkinPackage.
type CatkinPackage struct {
	Name       string
	RunDepends []string
	CMakeLists string
	PackageXML string
}

// WriteCatkinPackage writes a format 1 package.xml and a CMakeLists.txt
// into dir.
func WriteCatkinPackage(t *testing.T, dir string, pkg CatkinPackage) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	manifest := pkg.PackageXML
	if manifest == "" {
		manifest = fmt.Sprintf("<?xml version=\"1.0\"?>\n<package>\n  <name>%s</name>\n  <version>1.0.0</version>\n  <buildtool_depend>catkin</buildtool_depend>\n", pkg.Name)
		for _, dep := range pkg.RunDepends {
			manifest += fmt.Sprintf("  <run_depend>%s</run_depend>\n", dep)
		}
		manifest += "</package>\n"
	}
	cmake := pkg.CMakeLists
	if cmake == "" {
		cmake = fmt.Sprintf("cmake_minimum_required(VERSION 3.0.2)\nproject(%s)\nset(CMAKE_CXX_STANDARD 14)\n", pkg.Name)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.xml"), []byte(manifest), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CMakeLists.txt"), []byte(cmake), 0644))
}
