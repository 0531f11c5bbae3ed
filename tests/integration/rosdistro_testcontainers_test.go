//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"noetic-jammy/internal/adapters"
	"noetic-jammy/internal/app"
)

const rosdistroIndex = `type: index
version: 4
distributions:
  noetic:
    distribution: [noetic/distribution.yaml]
    distribution_cache: noetic/noetic-cache.yaml.gz
`

const rosdistroCache = `type: cache
version: 2
name: noetic
distribution_file:
- type: distribution
  version: 2
  repositories:
    catkin:
      source: {type: git, url: 'https://github.com/ros/catkin.git', version: noetic-devel}
    ros_comm:
      release:
        packages: [roscpp, rosbag]
      source: {type: git, url: 'https://github.com/ros/ros_comm.git', version: noetic-devel}
    rosconsole:
      source: {type: git, url: 'https://github.com/ros/rosconsole.git', version: noetic-devel}
release_package_xmls:
  catkin: <package format="2"><name>catkin</name><exec_depend>python3-catkin-pkg</exec_depend></package>
  roscpp: <package format="2"><name>roscpp</name><buildtool_depend>catkin</buildtool_depend><depend>rosconsole</depend><depend>boost</depend></package>
  rosconsole: <package format="2"><name>rosconsole</name><buildtool_depend>catkin</buildtool_depend><depend>log4cxx</depend></package>
`

const rosdepBase = `boost:
  ubuntu: [libboost-all-dev]
log4cxx:
  ubuntu:
    jammy: [liblog4cxx-dev]
`

const rosdepPython = `python3-catkin-pkg:
  ubuntu: [python3-catkin-pkg]
`

const rosdistroServerScript = `
import gzip, http.server, os
root = '/srv/rosdistro'
os.makedirs(root + '/noetic', exist_ok=True)
os.makedirs(root + '/rosdep', exist_ok=True)
open(root + '/index-v4.yaml', 'w').write(%q)
with gzip.open(root + '/noetic/noetic-cache.yaml.gz', 'wt') as f:
    f.write(%q)
open(root + '/rosdep/base.yaml', 'w').write(%q)
open(root + '/rosdep/python.yaml', 'w').write(%q)
os.chdir(root)
http.server.ThreadingHTTPServer(('0.0.0.0', 8081), http.server.SimpleHTTPRequestHandler).serve_forever()
`

func startRosdistroServer(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	script := fmt.Sprintf(rosdistroServerScript, rosdistroIndex, rosdistroCache, rosdepBase, rosdepPython)
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8081/tcp"},
		Cmd:          []string{"python", "-c", script},
		WaitingFor:   wait.ForListeningPort("8081/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8081/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}

func TestGenerateEnvWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startRosdistroServer(ctx, t)
	t.Cleanup(cleanup)

	root := t.TempDir()
	outputDir := filepath.Join(root, "docker")
	cacheDir := filepath.Join(root, "cache")

	service := app.NewService()
	result, err := service.GenerateEnv(ctx, app.GenerateEnvRequest{
		Targets:      []string{"roscpp"},
		OutputDir:    outputDir,
		CacheDir:     cacheDir,
		RosdistroURL: endpoint,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"catkin", "rosconsole", "roscpp"}, result.BuildPackages)
	assert.Equal(t, []string{"libboost-all-dev", "liblog4cxx-dev", "python3-catkin-pkg"}, result.AptPackages)

	for _, name := range []string{"rosdep.yaml", "Makefile", "Dockerfile"} {
		require.FileExists(t, filepath.Join(outputDir, name))
	}
	for _, name := range []string{"index-v4.yaml", "noetic-cache.yaml", "base.yaml", "python.yaml"} {
		require.FileExists(t, filepath.Join(cacheDir, name))
	}

	makefile, err := os.ReadFile(filepath.Join(outputDir, "Makefile"))
	require.NoError(t, err)
	assert.Contains(t, string(makefile), "https://github.com/twdragon/rosconsole.git")
	assert.Equal(t, 1, strings.Count(string(makefile), "\n/tmp/built_packages/roscpp:"))

	dockerfile, err := os.ReadFile(filepath.Join(outputDir, "Dockerfile"))
	require.NoError(t, err)
	assert.Contains(t, string(dockerfile), "liblog4cxx-dev")
	assert.NotContains(t, string(dockerfile), "python3-catkin-pkg")

	self, err := os.Executable()
	require.NoError(t, err)
	builder := filepath.Base(self)
	info, err := os.Stat(filepath.Join(outputDir, builder))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100)
	assert.Contains(t, string(dockerfile), "COPY "+builder+" /usr/local/bin/\n")
	assert.Contains(t, string(makefile), "BUILDER ?= "+builder+"\n")
}

func TestRosdistroAdapterCacheWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startRosdistroServer(ctx, t)
	cacheDir := t.TempDir()

	cache, err := adapters.NewRosdistroHTTPAdapter(endpoint, cacheDir, 10, 2, nil).Cache(ctx, "noetic")
	require.NoError(t, err)
	assert.Contains(t, cache.ReleasePackageXMLs, "roscpp")

	cleanup()
	offline, err := adapters.NewRosdistroHTTPAdapter(endpoint, cacheDir, 1, 1, nil).Cache(ctx, "noetic")
	require.NoError(t, err)
	assert.Equal(t, cache, offline)
}
