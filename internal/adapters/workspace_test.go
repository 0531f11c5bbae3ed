package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir string, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "package.xml")
	content := "<?xml version=\"1.0\"?>\n<package>\n  <name>" + name + "</name>\n  <version>1.0.0</version>\n</package>\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newWorkspace() WorkspaceAdapter {
	return NewWorkspaceAdapter(NewPackageXMLAdapter())
}

func TestWorkspaceAdapter_FindPackageNested(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "src", "pkg_a"), "pkg_a")
	deep := filepath.Join(root, "src", "nested", "deeper", "pkg_b")
	writeManifest(t, deep, "pkg_b")
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "pkg_a", "CMakeLists.txt"), []byte("cmake"), 0644))

	manifest, found, err := newWorkspace().FindPackage(root, "pkg_b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, deep, manifest.Dir)
}

func TestWorkspaceAdapter_SkipsVCSDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{".git", ".hg", ".svn"} {
		writeManifest(t, filepath.Join(root, dir, "pkg"), "hidden")
	}
	writeManifest(t, filepath.Join(root, "build", "real_pkg"), "real_pkg")

	_, found, err := newWorkspace().FindPackage(root, "hidden")
	require.NoError(t, err)
	assert.False(t, found)

	manifest, found, err := newWorkspace().FindPackage(root, "real_pkg")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, filepath.Join(root, "build", "real_pkg"), manifest.Dir)
}

func TestWorkspaceAdapter_FindPackage(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "pkgs", "bar"), "bar")
	fooDir := filepath.Join(root, "pkgs", "foo")
	writeManifest(t, fooDir, "foo")

	manifest, found, err := newWorkspace().FindPackage(root, "foo")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "foo", manifest.Name)
	assert.Equal(t, "1.0.0", manifest.Version)
	assert.Equal(t, filepath.Join(fooDir, "package.xml"), manifest.Path)
	assert.Equal(t, fooDir, manifest.Dir)
}

func TestWorkspaceAdapter_FindPackageNameMustMatchExactly(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "foo_bar"), "foo_bar")
	writeManifest(t, filepath.Join(root, "Foo"), "Foo")

	_, found, err := newWorkspace().FindPackage(root, "foo")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWorkspaceAdapter_FindPackageFirstMatchWins(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "a", "dup"), "dup")
	writeManifest(t, filepath.Join(root, "b", "dup"), "dup")

	manifest, found, err := newWorkspace().FindPackage(root, "dup")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, filepath.Join(root, "a", "dup"), manifest.Dir)
}

func TestWorkspaceAdapter_FindPackageStopsAtBrokenManifest(t *testing.T) {
	root := t.TempDir()
	broken := filepath.Join(root, "a")
	require.NoError(t, os.MkdirAll(broken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "package.xml"), []byte("<package><name>foo</name"), 0644))
	writeManifest(t, filepath.Join(root, "b"), "foo")

	manifest, found, err := newWorkspace().FindPackage(root, "foo")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.False(t, found)
	assert.Empty(t, manifest.Dir)
}

func TestWorkspaceAdapter_FindPackageStopsAtNamelessManifest(t *testing.T) {
	root := t.TempDir()
	nameless := filepath.Join(root, "a")
	require.NoError(t, os.MkdirAll(nameless, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nameless, "package.xml"), []byte("<package><version>1.0.0</version></package>"), 0644))
	writeManifest(t, filepath.Join(root, "b"), "foo")

	_, found, err := newWorkspace().FindPackage(root, "foo")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.False(t, found)
}

func TestWorkspaceAdapter_EmptyRootErrors(t *testing.T) {
	_, _, err := newWorkspace().FindPackage("", "foo")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestWorkspaceAdapter_NonExistentRootErrors(t *testing.T) {
	_, _, err := newWorkspace().FindPackage("/nonexistent/path/that/does/not/exist", "foo")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestWorkspaceAdapter_EmptyWorkspaceNotFound(t *testing.T) {
	root := t.TempDir()
	_, found, err := newWorkspace().FindPackage(root, "foo")
	require.NoError(t, err)
	assert.False(t, found)
}
