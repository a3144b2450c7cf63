package font

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/graphics"
)

// CacheKey uniquely identifies a cached composited glyph bitmap.
type CacheKey struct {
	// BackendID is the identity of the producing backend instance.
	BackendID uint64

	// Char is the character code.
	Char rune

	// Size is the requested size in pixels.
	Size float64

	// Style is the requested style flags.
	Style Style

	// Effects is the signature of the effect layer stack applied on top of
	// the raw glyph. Empty for an unstyled glyph.
	Effects string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%d/%q/%g/%s/%s", k.BackendID, k.Char, k.Size, k.Style, k.Effects)
}

// CacheConfig holds configuration for GlyphCache.
type CacheConfig struct {
	// MaxEntries bounds the cache; least-recently-used entries are evicted
	// beyond it. Default: 4096.
	MaxEntries int

	// NegativeTTL is how long a production failure is remembered before the
	// producer is allowed to run again for that key. Default: 2s.
	NegativeTTL time.Duration
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries:  4096,
		NegativeTTL: 2 * time.Second,
	}
}

// CacheStats holds cache counters.
type CacheStats struct {
	Hits        atomic.Uint64
	Misses      atomic.Uint64
	Evictions   atomic.Uint64
	Productions atomic.Uint64
	Failures    atomic.Uint64
}

type negativeEntry struct {
	err     *wefterrors.ProductionError
	expires time.Time
}

// GlyphCache memoizes composited glyph bitmaps so labels do not re-rasterize
// on every frame. It is the one structure in the toolkit mutated from more
// than one logical caller: rasterization may run on a background worker, so
// the cache is safe for concurrent use and GetOrCreate guarantees at most
// one in-flight production per key.
type GlyphCache struct {
	config CacheConfig
	lru    *lru.Cache
	group  singleflight.Group
	stats  CacheStats

	mu       sync.Mutex
	negative map[CacheKey]negativeEntry

	// now is replaceable in tests.
	now func() time.Time
}

// NewGlyphCache creates a glyph cache with default configuration.
func NewGlyphCache() *GlyphCache {
	return NewGlyphCacheWithConfig(DefaultCacheConfig())
}

// NewGlyphCacheWithConfig creates a glyph cache with the given configuration.
func NewGlyphCacheWithConfig(config CacheConfig) *GlyphCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = 4096
	}
	if config.NegativeTTL <= 0 {
		config.NegativeTTL = 2 * time.Second
	}

	c := &GlyphCache{
		config:   config,
		negative: make(map[CacheKey]negativeEntry),
		now:      time.Now,
	}
	// NewWithEvict only errors on a non-positive size, which is guarded above.
	store, err := lru.NewWithEvict(config.MaxEntries, func(any, any) {
		c.stats.Evictions.Add(1)
	})
	if err != nil {
		panic(err)
	}
	c.lru = store
	return c
}

// Get returns the cached bitmap for key, or nil on a miss.
func (c *GlyphCache) Get(key CacheKey) *graphics.Bitmap {
	if v, ok := c.lru.Get(key); ok {
		c.stats.Hits.Add(1)
		return v.(*graphics.Bitmap)
	}
	c.stats.Misses.Add(1)
	return nil
}

// GetOrCreate returns the cached bitmap for key, invoking produce on a miss.
//
// Concurrent callers for the same key never duplicate work: exactly one
// production runs and every caller observes its result. A failed production
// is remembered for NegativeTTL and returned as a *errors.ProductionError
// without re-running the producer, so a corrupt font cannot hot-loop.
func (c *GlyphCache) GetOrCreate(key CacheKey, produce func() (*graphics.Bitmap, error)) (*graphics.Bitmap, error) {
	if v, ok := c.lru.Get(key); ok {
		c.stats.Hits.Add(1)
		return v.(*graphics.Bitmap), nil
	}
	c.stats.Misses.Add(1)

	if err := c.negativeFor(key); err != nil {
		return nil, err
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// A concurrent production may have completed while this caller
		// was queued on the flight group.
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		if err := c.negativeFor(key); err != nil {
			return nil, err
		}

		c.stats.Productions.Add(1)
		bitmap, err := produce()
		if err != nil {
			c.stats.Failures.Add(1)
			prodErr := &wefterrors.ProductionError{Key: key.String(), Err: err}
			c.mu.Lock()
			c.negative[key] = negativeEntry{err: prodErr, expires: c.now().Add(c.config.NegativeTTL)}
			c.mu.Unlock()
			return nil, prodErr
		}
		c.lru.Add(key, bitmap)
		return bitmap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*graphics.Bitmap), nil
}

// negativeFor returns the remembered failure for key if it has not expired.
func (c *GlyphCache) negativeFor(key CacheKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.negative[key]
	if !ok {
		return nil
	}
	if c.now().After(entry.expires) {
		delete(c.negative, key)
		return nil
	}
	return entry.err
}

// InvalidateBackend removes every entry produced by the given backend,
// positive and negative. Later lookups for those keys are plain misses.
func (c *GlyphCache) InvalidateBackend(backendID uint64) {
	for _, k := range c.lru.Keys() {
		if key, ok := k.(CacheKey); ok && key.BackendID == backendID {
			c.lru.Remove(key)
		}
	}
	c.mu.Lock()
	for key := range c.negative {
		if key.BackendID == backendID {
			delete(c.negative, key)
		}
	}
	c.mu.Unlock()
}

// Purge empties the cache.
func (c *GlyphCache) Purge() {
	c.lru.Purge()
	c.mu.Lock()
	c.negative = make(map[CacheKey]negativeEntry)
	c.mu.Unlock()
}

// Len returns the number of cached bitmaps.
func (c *GlyphCache) Len() int {
	return c.lru.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *GlyphCache) Stats() (hits, misses, evictions, productions, failures uint64) {
	return c.stats.Hits.Load(),
		c.stats.Misses.Load(),
		c.stats.Evictions.Load(),
		c.stats.Productions.Load(),
		c.stats.Failures.Load()
}
