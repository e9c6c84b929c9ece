// Package agentcache holds per-segment agent drawables for a single
// simulation tick.
package agentcache

import (
	"fmt"

	"github.com/golangdaddy/citymap/pkg/sim"
)

// Cache maps a segment to the values built for it during the current tick.
// Putting a value for a new tick drops everything from the previous one.
type Cache[K comparable, V any] struct {
	tick    sim.Tick
	hasTick bool
	entries map[K][]V
}

// New creates an empty cache with no current tick.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K][]V)}
}

// Has reports whether key was populated during tick. Entries from any other
// tick are never reported.
func (c *Cache[K, V]) Has(tick sim.Tick, key K) bool {
	if !c.hasTick || c.tick != tick {
		return false
	}
	_, ok := c.entries[key]
	return ok
}

// Get returns the values stored for key. Call it only after Has returned
// true for the current tick; a missing key panics. The returned slice is
// shared with the cache and must not be modified.
func (c *Cache[K, V]) Get(key K) []V {
	values, ok := c.entries[key]
	if !ok {
		panic(fmt.Sprintf("agentcache: Get(%v) without an entry", key))
	}
	return values
}

// Put stores values for key at tick. A different tick clears the cache
// first. Putting the same key twice within one tick panics.
func (c *Cache[K, V]) Put(tick sim.Tick, key K, values []V) {
	if !c.hasTick || c.tick != tick {
		c.tick = tick
		c.hasTick = true
		clear(c.entries)
	}
	if _, ok := c.entries[key]; ok {
		panic(fmt.Sprintf("agentcache: %v already populated for tick %d", key, tick))
	}
	c.entries[key] = values
}

// Tick returns the tick the cache currently holds, if any.
func (c *Cache[K, V]) Tick() (sim.Tick, bool) {
	return c.tick, c.hasTick
}

// Len is the number of populated segments.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}
