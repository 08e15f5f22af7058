package layout

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/rivo/uniseg"

	"github.com/dshills/caret/internal/metrics"
)

// LineWidths holds the measured prefix widths of one line.
type LineWidths struct {
	// Prefix[i] is the width of the first i characters; len(Prefix) is the
	// character count plus one.
	Prefix []float64
}

// Len returns the number of characters measured.
func (w *LineWidths) Len() int {
	return len(w.Prefix) - 1
}

// Width returns the width of the whole line.
func (w *LineWidths) Width() float64 {
	return w.Prefix[len(w.Prefix)-1]
}

// At returns the prefix width before character column, clamped to the line.
func (w *LineWidths) At(column int) float64 {
	column = min(max(column, 0), w.Len())
	return w.Prefix[column]
}

// Advance returns the width of character i.
func (w *LineWidths) Advance(i int) float64 {
	if i < 0 || i >= w.Len() {
		return 0
	}
	return w.Prefix[i+1] - w.Prefix[i]
}

// measureLine measures every prefix of text.
// Prefixes are measured whole so kerning-aware providers stay consistent
// with single measurements of the same text.
func measureLine(p metrics.Provider, text string, style metrics.Style) *LineWidths {
	prefix := make([]float64, 1, len(text)+1)
	state := -1
	rest := text
	var (
		cluster string
		pos     int
		last    float64
	)
	for len(rest) > 0 {
		cluster, rest, _, state = uniseg.StepString(rest, state)
		pos += len(cluster)
		w := p.Measure(text[:pos], style).Width
		// Keep prefixes monotonic even if a provider shrinks on kerning.
		last = max(last, w)
		prefix = append(prefix, last)
	}
	return &LineWidths{Prefix: prefix}
}

// WidthCache caches measured lines with LRU eviction.
//
// Entries are keyed by line index and validated against a hash of the line
// text and font, so a stale entry is never returned even if the caller
// forgets to invalidate. WidthCache performs no locking.
type WidthCache struct {
	provider  metrics.Provider
	entries   map[int]*widthEntry
	maxSize   int
	clock     uint64
	hits      uint64
	misses    uint64
	evictions uint64
}

type widthEntry struct {
	widths     *LineWidths
	hash       uint64 // Hash of line content and font for validation
	lastAccess uint64 // For LRU eviction
}

// DefaultWidthCacheSize is the number of lines cached by default.
const DefaultWidthCacheSize = 1024

// NewWidthCache creates a new width cache.
// maxSize is the maximum number of lines to cache (0 = unlimited).
func NewWidthCache(provider metrics.Provider, maxSize int) *WidthCache {
	if maxSize < 0 {
		maxSize = 0
	}
	return &WidthCache{
		provider: provider,
		entries:  make(map[int]*widthEntry),
		maxSize:  maxSize,
	}
}

// Get retrieves or measures the widths of a line.
func (c *WidthCache) Get(line int, text string, style metrics.Style) *LineWidths {
	hash := hashLine(text, style.Font)
	c.clock++

	if e, ok := c.entries[line]; ok && e.hash == hash {
		e.lastAccess = c.clock
		c.hits++
		return e.widths
	}

	c.misses++
	widths := measureLine(c.provider, text, style)
	c.entries[line] = &widthEntry{
		widths:     widths,
		hash:       hash,
		lastAccess: c.clock,
	}
	if c.maxSize > 0 && len(c.entries) > c.maxSize {
		c.evict()
	}
	return widths
}

// Invalidate drops a single line.
func (c *WidthCache) Invalidate(line int) {
	delete(c.entries, line)
}

// InvalidateFrom drops every line from startLine onwards.
// Edits that add or remove lines shift all following line indexes.
func (c *WidthCache) InvalidateFrom(startLine int) {
	for line := range c.entries {
		if line >= startLine {
			delete(c.entries, line)
		}
	}
}

// Clear drops every entry.
func (c *WidthCache) Clear() {
	c.entries = make(map[int]*widthEntry)
}

// SetProvider replaces the metrics provider and clears the cache.
func (c *WidthCache) SetProvider(p metrics.Provider) {
	c.provider = p
	c.Clear()
}

// evict removes the least recently used entries until under maxSize.
func (c *WidthCache) evict() {
	for len(c.entries) > c.maxSize {
		oldest, at := -1, uint64(math.MaxUint64)
		for line, e := range c.entries {
			if e.lastAccess < at {
				oldest, at = line, e.lastAccess
			}
		}
		delete(c.entries, oldest)
		c.evictions++
	}
}

// Size returns the number of cached lines.
func (c *WidthCache) Size() int {
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *WidthCache) Stats() CacheStats {
	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

// ResetStats resets the cache statistics counters.
func (c *WidthCache) ResetStats() {
	c.hits, c.misses, c.evictions = 0, 0, 0
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

// hashLine computes an FNV-1a hash of line content and font.
// Lengths are mixed in to keep "ab"+"c" and "a"+"bc" apart.
func hashLine(s string, font metrics.Font) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	h.Write(buf[:])
	h.Write([]byte(s))
	binary.LittleEndian.PutUint64(buf[:], uint64(len(font.Family)))
	h.Write(buf[:])
	h.Write([]byte(font.Family))
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(font.Size))
	h.Write(buf[:])
	return h.Sum64()
}
