package cache

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/curl-bridge/errors"
)

const (
	DefaultEvictInterval = 2 * time.Minute
	DefaultSyncInterval  = 2 * time.Minute
	metaSuffix           = ".meta"
)

// ErrNotFound matches, via errors.Is, every cache miss.
var ErrNotFound error = &errors.Error{Phase: errors.PhaseCache, Kind: errors.KindNotFound}

// Cache is a disk cache. It is safe for concurrent use.
type Cache struct {
	dir           string
	maxSize       int64
	evictInterval time.Duration
	syncInterval  time.Duration
	now           func() time.Time

	mu        sync.Mutex
	entries   map[string]*Entry
	dirty     map[string]bool
	lastEvict time.Time
	closed    bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxSize bounds the total size of cached data. Zero means unbounded.
func WithMaxSize(bytes int64) Option {
	return func(c *Cache) { c.maxSize = bytes }
}

// WithEvictInterval sets how often Set and Run trigger eviction.
func WithEvictInterval(d time.Duration) Option {
	return func(c *Cache) { c.evictInterval = d }
}

// WithSyncInterval sets how often Run flushes access times.
func WithSyncInterval(d time.Duration) Option {
	return func(c *Cache) { c.syncInterval = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Open opens or creates a cache rooted at dir.
func Open(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.InvalidInput(errors.PhaseCache, "cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IO(errors.PhaseCache, "create cache directory", err)
	}
	c := &Cache{
		dir:           dir,
		evictInterval: DefaultEvictInterval,
		syncInterval:  DefaultSyncInterval,
		now:           time.Now,
		entries:       make(map[string]*Entry),
		dirty:         make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastEvict = c.now()
	return c, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

// Now returns the cache's notion of the current time.
func (c *Cache) Now() time.Time {
	return c.now()
}

// Get looks up url and marks it accessed. A miss returns an error matching
// ErrNotFound.
func (c *Cache) Get(url string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.Closed(errors.PhaseCache, "cache")
	}

	key, e := c.resolve(url)
	if e == nil {
		return nil, errors.NotFound(errors.PhaseCache, "entry", url)
	}
	e.LastAccess = c.now()
	c.dirty[key] = true
	cp := *e
	return &cp, nil
}

// Open returns a reader over the data of e. If the data file is missing or
// its size disagrees with the metadata, the entry is dropped and the error
// matches ErrNotFound.
func (c *Cache) Open(e *Entry) (io.ReadCloser, error) {
	if e == nil {
		return nil, errors.NilPointer(errors.PhaseCache, "*cache.Entry")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.dataPath(e.Key)
	fi, err := os.Stat(path)
	if err == nil && fi.Size() == e.Size {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.IO(errors.PhaseCache, "open data file", err)
		}
		return f, nil
	}

	Logger().Warn("corrupted cache entry", zap.String("key", e.Key), zap.String("url", e.URL))
	c.drop(e.Key)
	return nil, errors.NotFound(errors.PhaseCache, "data", e.URL)
}

// Read returns the data of e.
func (c *Cache) Read(e *Entry) ([]byte, error) {
	rc, err := c.Open(e)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.IO(errors.PhaseCache, "read data file", err)
	}
	return data, nil
}

// Set stores data for url, replacing any previous entry.
func (c *Cache) Set(url string, data []byte, lastModified *time.Time, expires time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseCache, "cache")
	}

	key, old := c.resolve(url)
	now := c.now()
	e := &Entry{
		URL:          url,
		Key:          key,
		Size:         int64(len(data)),
		Created:      now,
		LastAccess:   now,
		Expires:      expires,
		LastModified: lastModified,
	}
	if old != nil {
		e.Created = old.Created
	}

	if err := os.MkdirAll(c.keyDir(key), 0o755); err != nil {
		return errors.IO(errors.PhaseCache, "create entry directory", err)
	}
	if err := writeFileAtomic(c.dataPath(key), data); err != nil {
		return errors.IO(errors.PhaseCache, "write data file", err)
	}
	if err := c.writeMeta(e); err != nil {
		return err
	}
	c.entries[key] = e
	delete(c.dirty, key)
	Logger().Debug("cached", zap.String("url", url), zap.Int64("size", e.Size))

	if c.evictInterval > 0 && now.Sub(c.lastEvict) >= c.evictInterval {
		return c.evictLocked()
	}
	return nil
}

// Remove deletes the entry for url, if any.
func (c *Cache) Remove(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key, e := c.resolve(url)
	if e == nil {
		return nil
	}
	return c.drop(key)
}

// Len returns the number of indexed entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Size returns the total size of indexed entries.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, e := range c.entries {
		total += e.Size
	}
	return total
}

// Flush writes pending access times to disk. Entries that fail stay pending.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *Cache) flushLocked() error {
	if len(c.dirty) == 0 {
		return nil
	}
	var err error
	n := 0
	for key := range c.dirty {
		e, ok := c.entries[key]
		if !ok {
			delete(c.dirty, key)
			continue
		}
		if werr := c.writeMeta(e); werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		delete(c.dirty, key)
		n++
	}
	Logger().Debug("flushed access times", zap.Int("count", n), zap.Int("pending", len(c.dirty)))
	return err
}

// Evict scans the directory and removes least recently accessed entries until
// the total size is within the limit.
func (c *Cache) Evict() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictLocked()
}

func (c *Cache) evictLocked() error {
	c.lastEvict = c.now()
	if c.maxSize <= 0 {
		return nil
	}
	err := c.warm()

	var total int64
	all := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		total += e.Size
		all = append(all, e)
	}
	if total <= c.maxSize {
		return err
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].LastAccess.Before(all[j].LastAccess)
	})
	removed := 0
	for _, e := range all {
		if total <= c.maxSize {
			break
		}
		if derr := c.drop(e.Key); derr != nil {
			err = multierr.Append(err, derr)
			continue
		}
		total -= e.Size
		removed++
	}
	Logger().Info("evicted cache entries", zap.Int("count", removed), zap.Int64("size", total))
	return err
}

// Run flushes access times and evicts periodically until ctx is done, then
// flushes once more.
func (c *Cache) Run(ctx context.Context) error {
	flushTick := time.NewTicker(positive(c.syncInterval, DefaultSyncInterval))
	defer flushTick.Stop()
	evict := time.NewTicker(positive(c.evictInterval, DefaultEvictInterval))
	defer evict.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := c.Flush(); err != nil {
				return multierr.Append(ctx.Err(), err)
			}
			return ctx.Err()
		case <-flushTick.C:
			if err := c.Flush(); err != nil {
				Logger().Warn("flush access times", zap.Error(err))
			}
		case <-evict.C:
			if err := c.Evict(); err != nil {
				Logger().Warn("evict", zap.Error(err))
			}
		}
	}
}

// Close flushes pending access times. The cache cannot be used afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.flushLocked()
}

// resolve finds the key for url, following the collision chain, and the
// entry stored under it, if any.
func (c *Cache) resolve(url string) (string, *Entry) {
	key := Key(url)
	for {
		e := c.lookup(key)
		if e == nil {
			return key, nil
		}
		if e.URL == url {
			return key, e
		}
		Logger().Warn("cache key collision", zap.String("key", key), zap.String("url", url), zap.String("cached", e.URL))
		key = nextKey(key, url)
	}
}

func (c *Cache) lookup(key string) *Entry {
	if e, ok := c.entries[key]; ok {
		return e
	}
	e, err := c.readMeta(c.metaPath(key))
	if err != nil || e == nil {
		return nil
	}
	c.entries[key] = e
	return e
}

// warm loads every metadata file not yet indexed.
func (c *Cache) warm() error {
	return filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, metaSuffix) {
			return nil
		}
		key := strings.TrimSuffix(d.Name(), metaSuffix)
		if _, ok := c.entries[key]; ok {
			return nil
		}
		e, err := c.readMeta(path)
		if err != nil {
			Logger().Warn("skipping metadata", zap.String("path", path), zap.Error(err))
			return nil
		}
		if e != nil {
			c.entries[key] = e
		}
		return nil
	})
}

func (c *Cache) drop(key string) error {
	delete(c.entries, key)
	delete(c.dirty, key)
	var err error
	for _, p := range []string{c.dataPath(key), c.metaPath(key)} {
		if rerr := os.Remove(p); rerr != nil && !os.IsNotExist(rerr) {
			err = multierr.Append(err, errors.IO(errors.PhaseCache, "remove "+filepath.Base(p), rerr))
		}
	}
	return err
}

func (c *Cache) readMeta(path string) (*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.IO(errors.PhaseCache, "read metadata", err)
	}
	var e Entry
	if err := yaml.Unmarshal(raw, &e); err != nil || e.URL == "" || e.Key == "" {
		Logger().Warn("invalid metadata, deleting", zap.String("path", path))
		_ = os.Remove(path)
		return nil, nil
	}
	return &e, nil
}

func (c *Cache) writeMeta(e *Entry) error {
	raw, err := yaml.Marshal(e)
	if err != nil {
		return errors.Wrap(errors.PhaseCache, errors.KindInvalidInput, err, "encode metadata")
	}
	if err := os.MkdirAll(c.keyDir(e.Key), 0o755); err != nil {
		return errors.IO(errors.PhaseCache, "create entry directory", err)
	}
	if err := writeFileAtomic(c.metaPath(e.Key), raw); err != nil {
		return errors.IO(errors.PhaseCache, "write metadata", err)
	}
	return nil
}

func (c *Cache) keyDir(key string) string {
	return filepath.Join(c.dir, key[0:1], key[1:2])
}

func (c *Cache) dataPath(key string) string {
	return filepath.Join(c.keyDir(key), key)
}

func (c *Cache) metaPath(key string) string {
	return c.dataPath(key) + metaSuffix
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := multierr.Combine(werr, cerr); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

func positive(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
