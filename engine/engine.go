// Package engine provides the KV storage abstraction the transactional
// layer is built over (spec §4.6 "External collaborators"), grounded on
// talent-plan-tinykv's storage.Storage/DBReader split: a small interface
// with a durable badger-backed implementation and an in-memory LLRB-backed
// double used by tests. In bypass-storage mode the store opens no engine.
package engine

import "github.com/tictocdb/tictocdb/tuple"

// Engine is the point-query primitive the transactional core treats the
// storage layer as (spec §5, "a serializable point-query primitive"). It
// has no notion of transactions, column families, or scans: every method
// reads or writes one already-encoded tuple record for one key, folding
// merges eagerly rather than relying on the engine's own compaction-time
// merge callback (see DESIGN.md).
type Engine interface {
	// Insert installs a value-bearing INSERT record for key, merging with
	// any existing record per tuple.Merge.
	Insert(key, value []byte, wts uint64) error

	// Update installs a value-bearing UPDATE record for key, merging with
	// any existing record per tuple.Merge.
	Update(key, value []byte, wts uint64) error

	// Delete installs a definitive DELETE record for key.
	Delete(key []byte, wts uint64) error

	// Lookup returns the decoded, final-merged record for key, or
	// found=false if no record exists.
	Lookup(key []byte) (found bool, rec tuple.Record, err error)

	// WriteTSUpdate installs a timestamp-only record for key, merging with
	// any existing record per tuple.Merge. Used by TSC eviction writeback
	// (spec §4.5 step 7); commit's install step writes values instead.
	WriteTSUpdate(key []byte, wts, delta uint64) error

	// Close releases the engine's resources.
	Close() error
}
