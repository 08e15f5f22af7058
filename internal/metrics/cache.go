package metrics

import (
	"sync"
	"sync/atomic"
)

// DefaultCacheSize is the number of measurements a Cache keeps by default.
const DefaultCacheSize = 4096

// Cache memoises measurements of another provider with LRU eviction.
// Cache is safe for concurrent use so that several engines can share one.
type Cache struct {
	mu      sync.Mutex
	inner   Provider
	entries map[cacheKey]*cacheEntry
	heights map[Style]float64
	maxSize int
	clock   uint64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheKey struct {
	text  string
	style Style
}

type cacheEntry struct {
	size       Size
	lastAccess uint64 // For LRU eviction
}

// NewCache wraps inner. maxSize <= 0 uses DefaultCacheSize.
func NewCache(inner Provider, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		inner:   inner,
		entries: make(map[cacheKey]*cacheEntry),
		heights: make(map[Style]float64),
		maxSize: maxSize,
	}
}

// Measure implements Provider.
func (c *Cache) Measure(text string, style Style) Size {
	key := cacheKey{text: text, style: style}

	c.mu.Lock()
	c.clock++
	if e, ok := c.entries[key]; ok {
		e.lastAccess = c.clock
		c.mu.Unlock()
		c.hits.Add(1)
		return e.size
	}
	c.mu.Unlock()

	c.misses.Add(1)
	size := c.inner.Measure(text, style)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{size: size, lastAccess: c.clock}
	if len(c.entries) > c.maxSize {
		c.evict()
	}
	return size
}

// LineHeight implements Provider.
func (c *Cache) LineHeight(style Style) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.heights[style]; ok {
		return h
	}
	h := c.inner.LineHeight(style)
	c.heights[style] = h
	return h
}

// evict removes the least recently used entry.
// Must be called with the lock held.
func (c *Cache) evict() {
	var (
		oldest cacheKey
		at     uint64
		found  bool
	)
	for k, e := range c.entries {
		if !found || e.lastAccess < at {
			oldest, at, found = k, e.lastAccess, true
		}
	}
	if found {
		delete(c.entries, oldest)
		c.evictions.Add(1)
	}
}

// Clear drops every cached measurement.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*cacheEntry)
	c.heights = make(map[Style]float64)
}

// Inner returns the wrapped provider.
func (c *Cache) Inner() Provider {
	return c.inner
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()
	return newStats(size, c.maxSize, c.hits.Load(), c.misses.Load(), c.evictions.Load())
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Size      int     // Current number of entries
	MaxSize   int     // Maximum entries allowed
	Hits      uint64  // Number of cache hits
	Misses    uint64  // Number of cache misses
	Evictions uint64  // Number of evicted entries
	HitRate   float64 // Hit rate (0.0 - 1.0)
}

func newStats(size, maxSize int, hits, misses, evictions uint64) CacheStats {
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{
		Size:      size,
		MaxSize:   maxSize,
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
		HitRate:   hitRate,
	}
}
