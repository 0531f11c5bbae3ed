package adapters

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIndex = `type: index
version: 4
distributions:
  noetic:
    distribution: [noetic/distribution.yaml]
    distribution_cache: noetic/noetic-cache.yaml.gz
    distribution_status: end-of-life
`

const testCache = `type: cache
version: 2
name: noetic
distribution_file:
- type: distribution
  version: 2
  repositories:
    ros_comm:
      release:
        packages: [rosbag, roscpp]
        url: https://github.com/ros-gbp/ros_comm-release.git
        version: 1.17.0-1
      source:
        type: git
        url: https://github.com/ros/ros_comm.git
        version: noetic-devel
release_package_xmls:
  roscpp: <package><name>roscpp</name></package>
`

const testRosdepBase = `boost:
  ubuntu: [libboost-all-dev]
log4cxx:
  ubuntu:
    jammy: [liblog4cxx-dev]
`

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	_, err := gz.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func newRosdistroServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	cache := gzipBytes(t, testCache)
	mux := http.NewServeMux()
	mux.HandleFunc("/index-v4.yaml", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(testIndex))
	})
	mux.HandleFunc("/noetic/noetic-cache.yaml.gz", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(cache)
	})
	mux.HandleFunc("/rosdep/base.yaml", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(testRosdepBase))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRosdistroHTTPAdapter_Cache(t *testing.T) {
	var hits atomic.Int32
	server := newRosdistroServer(t, &hits)
	cacheDir := t.TempDir()

	adapter := NewRosdistroHTTPAdapter(server.URL+"/", cacheDir, 5, 1, nil)
	cache, err := adapter.Cache(t.Context(), "noetic")
	require.NoError(t, err)
	require.Len(t, cache.DistributionFile, 1)
	repo := cache.DistributionFile[0].Repositories["ros_comm"]
	require.NotNil(t, repo.Source)
	assert.Equal(t, "https://github.com/ros/ros_comm.git", repo.Source.URL)
	assert.Equal(t, []string{"rosbag", "roscpp"}, repo.Release.Packages)
	assert.Equal(t, int32(2), hits.Load())

	cached, err := os.ReadFile(filepath.Join(cacheDir, "noetic-cache.yaml"))
	require.NoError(t, err)
	assert.Equal(t, testCache, string(cached))

	fresh := NewRosdistroHTTPAdapter(server.URL, cacheDir, 5, 1, nil)
	_, err = fresh.Cache(t.Context(), "noetic")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRosdistroHTTPAdapter_IndexIsMemoized(t *testing.T) {
	var hits atomic.Int32
	server := newRosdistroServer(t, &hits)

	adapter := NewRosdistroHTTPAdapter(server.URL, "", 5, 1, nil)
	for range 3 {
		index, err := adapter.Index(t.Context())
		require.NoError(t, err)
		assert.Contains(t, index.Distributions, "noetic")
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestRosdistroHTTPAdapter_UnknownDistro(t *testing.T) {
	var hits atomic.Int32
	server := newRosdistroServer(t, &hits)

	_, err := NewRosdistroHTTPAdapter(server.URL, "", 5, 1, nil).Cache(t.Context(), "melodic")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestRosdistroHTTPAdapter_RosdepBase(t *testing.T) {
	var hits atomic.Int32
	server := newRosdistroServer(t, &hits)
	var progress bytes.Buffer

	db, err := NewRosdistroHTTPAdapter(server.URL, t.TempDir(), 5, 1, &progress).RosdepBase(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []any{"libboost-all-dev"}, db["boost"]["ubuntu"])
	assert.Contains(t, db, "log4cxx")
}

func TestRosdistroHTTPAdapter_MissingDocument(t *testing.T) {
	var hits atomic.Int32
	server := newRosdistroServer(t, &hits)

	_, err := NewRosdistroHTTPAdapter(server.URL, t.TempDir(), 5, 1, nil).RosdepPython(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestRosdistroHTTPAdapter_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(testRosdepBase))
	}))
	t.Cleanup(server.Close)

	db, err := NewRosdistroHTTPAdapter(server.URL, "", 5, 2, nil).RosdepBase(t.Context())
	require.NoError(t, err)
	assert.Contains(t, db, "boost")
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoRequestBackoffStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()
	cfg := httpRetryConfig{timeout: 5 * time.Second, retries: 3, baseDelay: time.Minute}

	start := time.Now()
	_, err := doRequest(ctx, server.URL, cfg)
	require.Error(t, err)
	assert.Less(t, time.Since(start), maxHTTPRetryDelay)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheName(t *testing.T) {
	name, gzipped, err := cacheName("http://example.com/noetic/noetic-cache.yaml.gz")
	require.NoError(t, err)
	assert.Equal(t, "noetic-cache.yaml", name)
	assert.True(t, gzipped)

	_, _, err = cacheName("http://example.com/noetic/cache.json")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
