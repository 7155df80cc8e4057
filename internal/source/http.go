package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	appLog "alarmboard/internal/log"
)

// ErrNotModifiedNoCache is returned for a 304 answer when nothing is cached.
var ErrNotModifiedNoCache = errors.New("source: 304 Not Modified but no cached body available")

const (
	defaultTimeout  = 15 * time.Second
	cacheBodyFile   = "body.csv"
	cacheMetaFile   = "meta.json"
	defaultCacheDir = "./var/alarmboard-cache"
)

// cacheEntry holds HTTP cache metadata for one URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HTTPLoader fetches the CSV over HTTP with conditional requests
// (ETag / Last-Modified) and keeps the last good body on disk. When the
// network fails or the server answers with an error, the cached body is
// served instead.
type HTTPLoader struct {
	url      string
	client   *http.Client
	fs       afero.Fs
	cacheDir string
}

// NewHTTPLoader creates a loader for rawURL caching under cacheDir on fsys.
func NewHTTPLoader(rawURL string, fsys afero.Fs, cacheDir string) *HTTPLoader {
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &HTTPLoader{
		url:      rawURL,
		client:   &http.Client{Timeout: defaultTimeout},
		fs:       fsys,
		cacheDir: cacheDir,
	}
}

// WithClient replaces the HTTP client, mainly for tests.
func (h *HTTPLoader) WithClient(c *http.Client) *HTTPLoader {
	h.client = c
	return h
}

func (h *HTTPLoader) Location() string { return redactURL(h.url) }

func (h *HTTPLoader) Load(ctx context.Context) (string, error) {
	cachePath := h.cachePath()
	if err := h.fs.MkdirAll(cachePath, 0o700); err != nil {
		return "", err
	}

	meta, _ := h.loadMeta(cachePath)
	cached, _ := afero.ReadFile(h.fs, filepath.Join(cachePath, cacheBodyFile))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return "", err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("source fetch start", "url", h.Location())

	resp, err := h.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			appLog.Error("source fetch network error, using cached body", err, "url", h.Location())
			return string(cached), nil
		}
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		entry := cacheEntry{
			URL:          h.url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := h.saveCache(cachePath, entry, body); err != nil {
			appLog.Error("source cache save failed", err, "url", h.Location())
		}
		appLog.Info("source fetch success", "url", h.Location(), "bytes", len(body))
		return string(body), nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return "", ErrNotModifiedNoCache
		}
		appLog.Debug("source not modified; using cache", "url", h.Location())
		return string(cached), nil

	default:
		if len(cached) > 0 {
			appLog.Error("source fetch non-OK, using cached body", errors.New(resp.Status), "url", h.Location(), "status", resp.StatusCode)
			return string(cached), nil
		}
		return "", errors.New(resp.Status)
	}
}

func (h *HTTPLoader) cachePath() string {
	sum := sha256.Sum256([]byte(h.url))
	return filepath.Join(h.cacheDir, hex.EncodeToString(sum[:8]))
}

func (h *HTTPLoader) loadMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := afero.ReadFile(h.fs, filepath.Join(cachePath, cacheMetaFile))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (h *HTTPLoader) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := afero.WriteFile(h.fs, filepath.Join(cachePath, cacheBodyFile), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(h.fs, filepath.Join(cachePath, cacheMetaFile), data, 0o600)
}

// redactURL keeps scheme and host only; alarm feeds often carry tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "http://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
