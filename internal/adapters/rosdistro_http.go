package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/shared"
	"noetic-jammy/internal/types"
)

const defaultHTTPTimeout = 60 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

const (
	rosdistroIndexPath = "index-v4.yaml"
	rosdepBasePath     = "rosdep/base.yaml"
	rosdepPythonPath   = "rosdep/python.yaml"
)

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
}

func normalizeHTTPConfig(timeoutSec int, retries int, delayMs int) httpRetryConfig {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	retryCount := retries
	if retryCount <= 0 {
		retryCount = defaultHTTPRetries
	}
	baseDelay := time.Duration(delayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = defaultHTTPRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: baseDelay,
	}
}

// RosdistroHTTPAdapter loads rosdistro and rosdep yaml over HTTP. Each
// document is stored decompressed under CacheDir and read from there on
// later calls; an empty CacheDir disables caching.
type RosdistroHTTPAdapter struct {
	BaseURL  string
	CacheDir string

	// Progress receives a download progress bar when set.
	Progress io.Writer

	httpCfg httpRetryConfig
	mu      sync.Mutex
	index   *types.RosdistroIndex
}

func NewRosdistroHTTPAdapter(baseURL string, cacheDir string, timeoutSec int, retries int, progress io.Writer) *RosdistroHTTPAdapter {
	return &RosdistroHTTPAdapter{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		CacheDir: cacheDir,
		Progress: progress,
		httpCfg:  normalizeHTTPConfig(timeoutSec, retries, 0),
	}
}

func (a *RosdistroHTTPAdapter) Index(ctx context.Context) (types.RosdistroIndex, error) {
	a.mu.Lock()
	if a.index != nil {
		index := *a.index
		a.mu.Unlock()
		return index, nil
	}
	a.mu.Unlock()

	var index types.RosdistroIndex
	if err := a.loadYAML(ctx, a.BaseURL+"/"+rosdistroIndexPath, &index); err != nil {
		return types.RosdistroIndex{}, err
	}
	a.mu.Lock()
	a.index = &index
	a.mu.Unlock()
	return index, nil
}

func (a *RosdistroHTTPAdapter) Cache(ctx context.Context, distro string) (types.DistributionCache, error) {
	index, err := a.Index(ctx)
	if err != nil {
		return types.DistributionCache{}, err
	}
	dist, ok := index.Distributions[distro]
	if !ok || strings.TrimSpace(dist.DistributionCache) == "" {
		return types.DistributionCache{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("distribution %s has no cache in rosdistro index", distro))
	}
	var cache types.DistributionCache
	if err := a.loadYAML(ctx, a.resolve(dist.DistributionCache), &cache); err != nil {
		return types.DistributionCache{}, err
	}
	return cache, nil
}

func (a *RosdistroHTTPAdapter) RosdepBase(ctx context.Context) (types.RosdepDB, error) {
	db := types.RosdepDB{}
	if err := a.loadYAML(ctx, a.BaseURL+"/"+rosdepBasePath, &db); err != nil {
		return nil, err
	}
	return db, nil
}

func (a *RosdistroHTTPAdapter) RosdepPython(ctx context.Context) (types.RosdepDB, error) {
	db := types.RosdepDB{}
	if err := a.loadYAML(ctx, a.BaseURL+"/"+rosdepPythonPath, &db); err != nil {
		return nil, err
	}
	return db, nil
}

// resolve turns index references relative to the index file into
// absolute URLs.
func (a *RosdistroHTTPAdapter) resolve(ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil || parsed.IsAbs() {
		return ref
	}
	base, err := url.Parse(a.BaseURL + "/" + rosdistroIndexPath)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

func (a *RosdistroHTTPAdapter) loadYAML(ctx context.Context, rawURL string, out any) error {
	name, gzipped, err := cacheName(rawURL)
	if err != nil {
		return err
	}
	cachePath := ""
	if a.CacheDir != "" {
		cachePath = filepath.Join(a.CacheDir, name)
		if content, err := os.ReadFile(cachePath); err == nil {
			log.Debug().Str("path", cachePath).Msg("loading rosdistro data from cache")
			return decodeYAML(content, rawURL, out)
		}
	}

	log.Debug().Str("url", rawURL).Msg("downloading rosdistro data")
	content, err := a.fetch(ctx, rawURL, gzipped)
	if err != nil {
		return err
	}
	if err := decodeYAML(content, rawURL, out); err != nil {
		return err
	}
	if cachePath != "" {
		if err := ensureParentDir(cachePath); err != nil {
			return err
		}
		if err := os.WriteFile(cachePath, content, 0o644); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write rosdistro cache").
				WithCause(err)
		}
		log.Debug().Str("path", cachePath).Msg("rosdistro data cached")
	}
	return nil
}

func (a *RosdistroHTTPAdapter) fetch(ctx context.Context, rawURL string, gzipped bool) ([]byte, error) {
	resp, err := doRequest(ctx, rawURL, a.httpCfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := errbuilder.CodeInternal
		if resp.StatusCode == http.StatusNotFound {
			code = errbuilder.CodeNotFound
		}
		return nil, errbuilder.New().
			WithCode(code).
			WithMsg("rosdistro download failed").
			WithCause(shared.HTTPStatusError(resp.StatusCode, rawURL))
	}

	var body io.Reader = resp.Body
	if a.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(a.Progress),
			progressbar.OptionSetDescription(path.Base(resp.Request.URL.Path)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		body = io.TeeReader(resp.Body, bar)
	}
	if gzipped || strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := pgzip.NewReader(body)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read gzipped rosdistro data").
				WithCause(err)
		}
		defer gz.Close()
		body = gz
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read rosdistro data").
			WithCause(err)
	}
	return content, nil
}

// cacheName returns the file name a document is cached under and whether
// the download is gzip compressed.
func cacheName(rawURL string) (string, bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid rosdistro url").
			WithCause(err)
	}
	name := path.Base(parsed.Path)
	gzipped := strings.HasSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".gz")
	switch path.Ext(name) {
	case ".yaml", ".yml":
		return name, gzipped, nil
	default:
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown rosdistro file extension: %s", rawURL))
	}
}

func decodeYAML(content []byte, source string, out any) error {
	if err := yaml.Unmarshal(content, out); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse " + source).
			WithCause(err)
	}
	return nil
}

func doRequest(ctx context.Context, url string, cfg httpRetryConfig) (*http.Response, error) {
	client := &http.Client{Timeout: cfg.timeout}
	var lastErr error
	for attempt := 0; attempt < cfg.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request canceled").
				WithCause(ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create request").
				WithCause(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < cfg.retries-1 {
				if err := waitRetry(ctx, httpRetryDelay(attempt, cfg)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request failed").
				WithCause(err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < cfg.retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if err := waitRetry(ctx, httpRetryDelay(attempt, cfg)); err != nil {
				return nil, err
			}
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request failed").
		WithCause(lastErr)
}

// waitRetry sleeps for delay unless ctx ends first.
func waitRetry(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("request canceled").
			WithCause(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func httpRetryDelay(attempt int, cfg httpRetryConfig) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

var _ ports.RosdistroPort = (*RosdistroHTTPAdapter)(nil)
