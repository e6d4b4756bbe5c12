// Package imagecache downloads files over HTTP and caches them in memory
// and on disk. Lookups never block: content already in memory is returned
// directly, everything else is loaded by background workers and delivered
// to a callback.
package imagecache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/sync/errgroup"
)

// DefaultLifetime is the maximum age of a cached file when no lifetime is
// given.
const DefaultLifetime = 30 * 24 * time.Hour

// NameFunc maps a URL to the cache file name.
type NameFunc func(rawURL string) string

// FileNameFromURL keeps the last path element of the URL.
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}

// Callback receives downloaded or disk-loaded content.
type Callback func(data []byte, err error)

type job struct {
	url      string
	callback Callback
}

type entry struct {
	content []byte
	date    time.Time
}

// Cache is a two-tier download cache.
type Cache struct {
	dir    string
	client *http.Client
	name   NameFunc
	logger *slog.Logger
	now    func() time.Time

	mu  sync.Mutex
	mem map[string]entry

	downloads chan job
	diskLoads chan job

	stop     chan struct{}
	stopOnce sync.Once
}

// ErrStopped is passed to callbacks of lookups that can no longer be served
// because Run has returned.
var ErrStopped = errors.New("imagecache: stopped")

// Option configures a Cache.
type Option func(*Cache)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option { return func(cc *Cache) { cc.client = c } }

// WithNameFunc sets the URL to file name mapping.
func WithNameFunc(f NameFunc) Option { return func(c *Cache) { c.name = f } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Cache) { c.logger = l } }

// New creates the cache directory and returns the cache. Start the workers
// with Run.
func New(dir string, opts ...Option) (*Cache, error) {
	c := &Cache{
		dir:       dir,
		client:    &http.Client{Timeout: 30 * time.Second},
		name:      FileNameFromURL,
		logger:    slog.Default(),
		now:       time.Now,
		mem:       make(map[string]entry),
		downloads: make(chan job, 64),
		diskLoads: make(chan job, 64),
		stop:      make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagecache: mkdir %s: %w", dir, err)
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) path(rawURL string) string {
	return filepath.Join(c.dir, c.name(rawURL))
}

// Get returns the content of rawURL if it is in memory and younger than
// lifetime. Otherwise it queues a disk load or a download and returns
// false; callback then receives the content. callback may be nil.
func (c *Cache) Get(rawURL string, lifetime time.Duration, callback Callback) ([]byte, bool) {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	now := c.now()
	c.mu.Lock()
	if e, ok := c.mem[rawURL]; ok {
		if !e.date.Add(lifetime).Before(now) {
			c.mu.Unlock()
			c.logger.Debug("memory cache hit", "url", rawURL)
			return e.content, true
		}
		delete(c.mem, rawURL)
	}
	c.mu.Unlock()

	j := job{url: rawURL, callback: callback}
	file := c.path(rawURL)
	if st, err := os.Stat(file); err == nil {
		if !st.ModTime().Add(lifetime).Before(now) {
			c.logger.Debug("loading from disk cache", "url", rawURL)
			c.enqueue(c.diskLoads, j)
			return nil, false
		}
		c.logger.Debug("cached file too old, deleting", "file", file)
		if err := os.Remove(file); err != nil {
			c.logger.Warn("remove stale cache file", "file", file, "err", err)
		}
	}
	c.logger.Debug("downloading", "url", rawURL)
	c.enqueue(c.downloads, j)
	return nil, false
}

func (c *Cache) enqueue(q chan job, j job) {
	select {
	case <-c.stop:
		c.notify(j, nil, ErrStopped)
		return
	default:
	}
	select {
	case q <- j:
	default:
		// Queue full: hand off without blocking the caller.
		go func() {
			select {
			case q <- j:
			case <-c.stop:
				c.notify(j, nil, ErrStopped)
			}
		}()
	}
}

// GetImage is Get followed by image decoding. Decoding errors are passed
// to the callback.
func (c *Cache) GetImage(rawURL string, lifetime time.Duration, callback func(image.Image, error)) (image.Image, bool) {
	var cb Callback
	if callback != nil {
		cb = func(data []byte, err error) {
			if err != nil {
				callback(nil, err)
				return
			}
			callback(Decode(data))
		}
	}
	data, ok := c.Get(rawURL, lifetime, cb)
	if !ok {
		return nil, false
	}
	img, err := Decode(data)
	if err != nil {
		c.logger.Warn("decode cached image", "url", rawURL, "err", err)
		return nil, false
	}
	return img, true
}

// Decode decodes PNG, JPEG, GIF or WebP data.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imagecache: decode: %w", err)
	}
	return img, nil
}

// Run processes downloads and disk loads until ctx is done. A cache runs
// once; afterwards lookups that miss memory fail with ErrStopped.
func (c *Cache) Run(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.stop) })
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.worker(ctx, c.downloads, c.download) })
	g.Go(func() error { return c.worker(ctx, c.diskLoads, c.loadFromDisk) })
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Cache) worker(ctx context.Context, q <-chan job, load func(context.Context, string) ([]byte, error)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-q:
			if data, ok := c.fromMemory(j.url); ok {
				c.notify(j, data, nil)
				continue
			}
			data, err := load(ctx, j.url)
			if err != nil {
				c.logger.Error("fetch failed", "url", j.url, "err", err)
			}
			c.notify(j, data, err)
		}
	}
}

func (c *Cache) fromMemory(rawURL string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.mem[rawURL]
	return e.content, ok
}

func (c *Cache) store(rawURL string, data []byte, at time.Time) {
	c.mu.Lock()
	c.mem[rawURL] = entry{content: data, date: at}
	c.mu.Unlock()
}

func (c *Cache) download(ctx context.Context, rawURL string) ([]byte, error) {
	now := c.now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("imagecache: request %s: %w", rawURL, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagecache: get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagecache: get %s: status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagecache: read %s: %w", rawURL, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("imagecache: get %s: empty body", rawURL)
	}
	c.store(rawURL, data, now)
	file := c.path(rawURL)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		c.logger.Warn("write cache file", "file", file, "err", err)
	}
	return data, nil
}

func (c *Cache) loadFromDisk(_ context.Context, rawURL string) ([]byte, error) {
	now := c.now()
	data, err := os.ReadFile(c.path(rawURL))
	if err != nil {
		return nil, fmt.Errorf("imagecache: read cache file: %w", err)
	}
	c.store(rawURL, data, now)
	return data, nil
}

func (c *Cache) notify(j job, data []byte, err error) {
	if j.callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("cache callback panicked", "url", j.url, "panic", fmt.Sprint(r))
		}
	}()
	j.callback(data, err)
}
