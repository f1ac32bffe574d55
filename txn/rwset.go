// Package txn implements the read/write set, the Transaction API, and the
// TicToc commit validator (spec §4.3, §4.4, §4.5).
package txn

import (
	"bytes"

	"github.com/tictocdb/tictocdb/tscache"
	"github.com/tictocdb/tictocdb/tuple"
	"github.com/tictocdb/tictocdb/txnerrors"
)

// entry is one RWS entry: a key a transaction has touched, its local
// write (if any), and the TSC cell it resolved to (spec §3 "Read/write
// entry").
type entry struct {
	key []byte

	isRead bool

	hasLocalWrite bool
	localClass    tuple.Class
	localPayload  []byte

	cell *tscache.Cell

	// observed at lookup time.
	wts uint64
	rts uint64
}

// rwset is the per-transaction unsorted bounded sequence of entries (spec
// §4.3). get_or_create does a linear scan — cheap, since transactions are
// short and entries are few.
type rwset struct {
	entries []*entry
	limit   int
}

func newRWSet(limit int) *rwset {
	return &rwset{limit: limit}
}

// find returns the existing entry for key, or nil.
func (s *rwset) find(key []byte) *entry {
	for _, e := range s.entries {
		if bytes.Equal(e.key, key) {
			return e
		}
	}
	return nil
}

// getOrCreate implements spec §4.3's get_or_create: linearly scan for an
// existing entry; if absent, allocate one, copy the key, append it.
// is_read is OR-ed cumulatively.
func (s *rwset) getOrCreate(key []byte, isRead bool) (*entry, error) {
	if e := s.find(key); e != nil {
		e.isRead = e.isRead || isRead
		return e, nil
	}
	if len(s.entries) >= s.limit {
		return nil, txnerrors.ErrResourceExhausted
	}
	e := &entry{key: append([]byte(nil), key...), isRead: isRead}
	s.entries = append(s.entries, e)
	return e, nil
}

// combineLocal installs a new local write message into e, combining with
// any prior local write per spec §4.3: a definitive write (insert/delete)
// replaces outright; a non-definitive write (update) merges via appMerge
// against the prior local value.
//
// If the entry has no prior local write and the new write is an update,
// there is no local base value to merge against yet. The reference
// implementation's local_write carries a documented TODO acknowledging
// this: the update is recorded as a raw, unmerged delta, and a following
// lookup in the same transaction returns that raw delta rather than a
// materialized value (see SPEC_FULL.md §12). This module preserves that
// behavior rather than spending an extra engine round-trip the reference
// never takes.
func combineLocal(e *entry, class tuple.Class, payload []byte, appMerge tuple.AppMerge) error {
	if appMerge == nil {
		appMerge = tuple.DefaultAppMerge
	}

	definitive := class == tuple.ClassInsert || class == tuple.ClassDelete

	switch {
	case !e.hasLocalWrite:
		// TODO: a bare Update with no prior local Insert cannot be
		// read-your-write-merged; it is stored as-is.
		e.hasLocalWrite = true
		e.localClass = class
		e.localPayload = payload

	case e.localClass == tuple.ClassDelete && !definitive:
		return txnerrors.ErrUpdateAfterDelete

	case definitive:
		e.localClass = class
		e.localPayload = payload

	default:
		e.localPayload = appMerge(e.key, e.localPayload, payload)
		// class stays whatever the prior local write recorded: a merge of
		// non-definitive writes doesn't change whether the key is
		// ultimately an insert or an update.
	}
	return nil
}
