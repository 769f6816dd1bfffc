package cache

import (
	"context"
	stderrors "errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/curl-bridge/errors"
	"github.com/wippyai/curl-bridge/httpx"
)

var maxAgePattern = regexp.MustCompile(`(?i)max-age=(\d+)`)

// Fetched is the outcome of Downloader.Fetch.
type Fetched struct {
	Body   []byte
	Status int
	// Cached is set when Body came from disk.
	Cached bool
}

// Downloader fetches URLs through an httpx.Client, serving and storing
// responses in a Cache.
type Downloader struct {
	client *httpx.Client
	cache  *Cache
}

// NewDownloader creates a downloader. c may be nil to disable caching.
func NewDownloader(client *httpx.Client, c *Cache) *Downloader {
	return &Downloader{client: client, cache: c}
}

// Fetch returns the body of url. A fresh cached copy is served from disk. A
// stale copy with a Last-Modified date is revalidated with If-Modified-Since
// and served from disk on 304. Anything else is downloaded, and stored when
// the response says it may be cached.
func (d *Downloader) Fetch(ctx context.Context, url string) (*Fetched, error) {
	log := Logger().With(zap.String("url", url))

	if d.cache == nil {
		return d.download(ctx, url, nil)
	}

	entry, err := d.cache.Get(url)
	if err != nil && !stderrors.Is(err, ErrNotFound) {
		return nil, err
	}
	if entry == nil {
		log.Debug("cache miss")
		return d.download(ctx, url, nil)
	}

	if entry.Fresh(d.cache.Now()) {
		if f, ok := d.fromDisk(entry); ok {
			log.Debug("cache hit")
			return f, nil
		}
		return d.download(ctx, url, nil)
	}

	if entry.LastModified == nil {
		return d.download(ctx, url, nil)
	}
	log.Debug("revalidating", zap.Time("last_modified", *entry.LastModified))
	return d.download(ctx, url, entry)
}

func (d *Downloader) download(ctx context.Context, url string, stale *Entry) (*Fetched, error) {
	req := d.client.Get(url)
	if stale != nil {
		req.AddHeader("If-Modified-Since", stale.LastModified.UTC().Format(http.TimeFormat))
	}
	res, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	if res.Status == http.StatusNotModified && stale != nil {
		if f, ok := d.fromDisk(stale); ok {
			Logger().Debug("not modified", zap.String("url", url))
			return f, nil
		}
		// The cached data vanished; fetch unconditionally.
		return d.download(ctx, url, nil)
	}
	if res.Status != http.StatusOK {
		return nil, errors.New(errors.PhaseHTTP, errors.KindProtocol).
			Value(res.Status).
			Detail("load %s: %s", url, res.StatusLine).
			Build()
	}

	body, err := res.BodyString()
	if err != nil {
		return nil, err
	}
	data := []byte(body)
	if d.cache != nil {
		d.store(url, res, data)
	}
	return &Fetched{Body: data, Status: res.Status}, nil
}

func (d *Downloader) fromDisk(e *Entry) (*Fetched, bool) {
	data, err := d.cache.Read(e)
	if err != nil {
		return nil, false
	}
	return &Fetched{Body: data, Status: http.StatusOK, Cached: true}, true
}

// store caches data when Cache-Control max-age or Expires puts its expiry in
// the future. max-age wins over Expires.
func (d *Downloader) store(url string, res *httpx.Result, data []byte) {
	now := d.cache.Now()

	var expires time.Time
	if t, err := http.ParseTime(res.Header("Expires")); err == nil {
		expires = t
	}
	if m := maxAgePattern.FindStringSubmatch(res.Header("Cache-Control")); m != nil {
		if secs, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			expires = now.Add(time.Duration(secs) * time.Second)
		}
	}
	if !expires.After(now) {
		Logger().Debug("not cacheable", zap.String("url", url))
		return
	}

	var lastModified *time.Time
	if t, err := http.ParseTime(res.Header("Last-Modified")); err == nil {
		lastModified = &t
	}
	if err := d.cache.Set(url, data, lastModified, expires); err != nil {
		Logger().Warn("cache store failed", zap.String("url", url), zap.Error(err))
	}
}
