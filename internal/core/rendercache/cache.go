// Package rendercache bounds the set of rasterized pages kept in
// memory. Eviction ranks entries by distance from a reference page so
// pages near the viewer's position stay resident under panning and
// zooming, regardless of insertion order.
package rendercache

import (
	"math"
	"sort"
	"sync"

	"github.com/colonyops/folio/internal/core/document"
)

// DefaultCapacity is the number of rendered pages retained.
const DefaultCapacity = 10

// Key identifies one cached render. Scales are quantized to
// thousandths so visually identical zoom levels share a slot.
type Key struct {
	PageIndex  int
	ScaleMilli uint32
	DarkMode   bool
}

// NewKey builds a cache key for a page at a zoom factor.
func NewKey(pageIndex int, scale float64, darkMode bool) Key {
	return Key{
		PageIndex:  pageIndex,
		ScaleMilli: quantizeScale(scale),
		DarkMode:   darkMode,
	}
}

func (k Key) distance(referencePage int) int {
	if k.PageIndex >= referencePage {
		return k.PageIndex - referencePage
	}
	return referencePage - k.PageIndex
}

// quantizeScale rounds a scale to thousandths, clamped to [1, max] so
// degenerate scales never produce a zero key.
func quantizeScale(scale float64) uint32 {
	scaled := math.Round(scale * 1000)
	switch {
	case math.IsNaN(scaled) || math.IsInf(scaled, 0) || scaled <= 0:
		return 1
	case scaled > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(scaled)
	}
}

// Cache is a bounded render cache. The mutex guards against re-entrant
// use from the foreground render and neighbor prefetch paths; there is
// no cross-goroutine contention in the current design.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]document.RenderImage
	capacity int
}

// New returns a cache retaining up to capacity renders; non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[Key]document.RenderImage),
		capacity: capacity,
	}
}

// Get returns the cached render for key, if present.
func (c *Cache) Get(key Key) (document.RenderImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.entries[key]
	return img, ok
}

// Put stores a render and, when over capacity, evicts everything but
// the entries nearest the reference page.
func (c *Cache) Put(key Key, img document.RenderImage, referencePage int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = img
	if len(c.entries) <= c.capacity {
		return
	}

	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].distance(referencePage) < keys[j].distance(referencePage)
	})
	for _, stale := range keys[c.capacity:] {
		delete(c.entries, stale)
	}
}

// Len returns the number of cached renders.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every cached render. Called on document reload.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]document.RenderImage)
}

// Keys returns a snapshot of the cached keys, in no particular order.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
