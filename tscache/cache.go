package tscache

import (
	"sync"

	"github.com/tictocdb/tictocdb/txnerrors"
)

// OnEvict is invoked whenever a cell's refcount drops to zero and it is
// removed from the cache. It must write back the evicted word as a
// timestamp-only update (spec invariant 4, §4.5 step 7) — this module
// calls it unconditionally on every removal, with no "skip writeback"
// path, since spec.md states invariant 4 without exception (see
// DESIGN.md for why this diverges from the reference code's
// transaction_deinit, which skips writeback outside validation).
type OnEvict func(key []byte, evicted TSWord)

type entry struct {
	cell     *Cell
	refcount int
}

// Cache is the timestamp cache: a bounded, refcounted, concurrent map from
// key to *Cell (spec §4.2). Eviction is refcount-gated, not
// recency-gated — a cell is only ever removed when its refcount reaches
// zero, never merely because the cache is "full" while the cell is still
// pinned. This rules out capacity/recency-driven caches like ristretto or
// golang-lru, whose eviction policies may drop a still-pinned entry and
// violate that contract (see DESIGN.md); a plain mutex-guarded map is used
// instead.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	capacity int
	onEvict  OnEvict
}

// New creates a cache bounded to holding at most capacity distinct keys
// (live or pinned) at once. onEvict may be nil, in which case eviction is
// a silent drop (used by tests that don't care about writeback).
func New(capacity int, onEvict OnEvict) *Cache {
	if onEvict == nil {
		onEvict = func([]byte, TSWord) {}
	}
	return &Cache{
		entries:  make(map[string]*entry),
		capacity: capacity,
		onEvict:  onEvict,
	}
}

// InsertAndGet returns the shared cell for key, creating it at the zero
// word with refcount 1 if absent, else incrementing the refcount (spec
// §4.2 "insert_and_get"). Returns ErrResourceExhausted if the cache is at
// capacity and key is not already present.
func (c *Cache) InsertAndGet(key []byte) (*Cell, error) {
	k := string(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[k]; ok {
		e.refcount++
		return e.cell, nil
	}
	if len(c.entries) >= c.capacity {
		return nil, txnerrors.ErrResourceExhausted
	}
	e := &entry{cell: newCell(TSWord{}), refcount: 1}
	c.entries[k] = e
	return e.cell, nil
}

// GetAndRemove decrements key's refcount; if it reaches zero, the entry is
// removed and onEvict is called with the final word (spec §4.2
// "get_and_remove", §4.5 step 7). No-op if key is not present.
func (c *Cache) GetAndRemove(key []byte) {
	k := string(key)
	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		c.mu.Unlock()
		return
	}
	e.refcount--
	if e.refcount > 0 {
		c.mu.Unlock()
		return
	}
	delete(c.entries, k)
	c.mu.Unlock()

	c.onEvict(key, e.cell.Load())
}

// Len reports the number of live (resident, possibly pinned) entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
