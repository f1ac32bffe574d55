// Package tscache implements the timestamp cache (TSC): a bounded,
// refcounted, concurrent map from key to a timestamp word, acting as the
// protocol's soft lock table (spec §3 "Timestamp cache entry", §4.2).
package tscache

import "sync/atomic"

// TSWord is the in-memory timestamp word attached to a cached key:
// lock_bit, delta, wts (spec §3 "Timestamp word", §6). The reference
// implementation packs these three fields into one naturally-aligned
// 128-bit integer so a single hardware CAS can update them as a unit; Go
// has no 128-bit atomic primitive, so this module instead makes TSWord an
// immutable value and swaps it in and out of a Cell's atomic.Pointer via
// compare-and-swap on the pointer itself (see DESIGN.md). Pointer-identity
// CAS gives the same "all three fields move together, or none do"
// guarantee the packed word provides, without bit-packing's overflow risk.
type TSWord struct {
	LockBit bool
	Delta   uint64
	Wts     uint64
}

// Rts returns wts + delta.
func (w TSWord) Rts() uint64 { return w.Wts + w.Delta }

// Cell is one shared TSC entry's atomically-swapped timestamp word. The
// refcount tracking how many live transactions hold it is kept by the
// Cache entry that owns the Cell. A Cell is valid for as long as its refcount is nonzero (spec §4.2, "must
// preserve the contract that a returned pointer is valid while the
// caller's refcount is nonzero").
type Cell struct {
	word atomic.Pointer[TSWord]
}

func newCell(w TSWord) *Cell {
	c := &Cell{}
	c.word.Store(&w)
	return c
}

// Load performs an atomic relaxed load of the word (spec §4.2 "load").
func (c *Cell) Load() TSWord {
	return *c.word.Load()
}

// CAS performs an atomic compare-and-swap of the whole word (spec §4.2
// "cas"). Unlike the reference contract, Go's atomic.Pointer CAS compares
// pointer identity, not value equality; callers always supply the exact
// TSWord value they previously observed via Load, so pointer identity and
// value equality coincide here.
func (c *Cell) CAS(old, new TSWord) bool {
	oldPtr := c.word.Load()
	if *oldPtr != old {
		return false
	}
	newCopy := new
	return c.word.CompareAndSwap(oldPtr, &newCopy)
}

// TryLock attempts to CAS lock_bit from false to true, preserving the
// cell's current delta/wts. Returns the word observed on failure so the
// caller can decide whether to retry.
func (c *Cell) TryLock() (ok bool, observed TSWord) {
	cur := c.Load()
	if cur.LockBit {
		return false, cur
	}
	locked := cur
	locked.LockBit = true
	return c.CAS(cur, locked), cur
}

// Unlock clears lock_bit, optionally raising delta/wts to new values in
// the same CAS (used by commit step 6's release).
func (c *Cell) Unlock(wts, delta uint64) {
	for {
		cur := c.Load()
		next := TSWord{LockBit: false, Wts: wts, Delta: delta}
		if c.CAS(cur, next) {
			return
		}
	}
}
