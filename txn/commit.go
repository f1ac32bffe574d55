package txn

import (
	"sort"
	"time"

	"github.com/tictocdb/tictocdb/config"
	"github.com/tictocdb/tictocdb/tuple"
	"github.com/tictocdb/tictocdb/txnerrors"
)

// runCommit implements the TicToc commit protocol of spec §4.5, steps 1-8.
// Release (step 7) and RWS deinit (step 8) run on every exit path, not
// just the success path: spec §4.5 writes "release... deinit RWS" with no
// exception for an aborted commit, matching the reference's
// transaction_deinit being called unconditionally on both branches.
func runCommit(t *Transaction) error {
	defer release(t, t.rws.entries)

	reads, writes := partition(t.rws.entries)

	var commitTS uint64
	for _, r := range reads {
		wts := r.wts
		if t.backend.IsolationLevel() == config.SiloStyle {
			// Silo-style isolation biases each read's observed wts forward
			// by 1 before folding it into commit_ts (spec §4.5
			// "Isolation").
			wts++
		}
		commitTS = maxU64(commitTS, wts)
	}

	sort.Slice(writes, func(i, j int) bool {
		return string(writes[i].key) < string(writes[j].key)
	})

	for {
		locked, failed := lockWrites(writes)
		if locked {
			break
		}
		unlockAll(failed)
		time.Sleep(time.Microsecond)
	}

	for _, w := range writes {
		cur := w.cell.Load()
		w.rts = cur.Rts()
		commitTS = maxU64(commitTS, w.rts+1)
	}

	if err := validateReads(reads, writes, commitTS); err != nil {
		unlockAll(writes)
		return err
	}

	if err := installWrites(t, writes, commitTS); err != nil {
		unlockAll(writes)
		return txnerrors.Wrap(err)
	}

	return nil
}

func partition(entries []*entry) (reads, writes []*entry) {
	for _, e := range entries {
		if e.isRead {
			reads = append(reads, e)
		}
		if e.hasLocalWrite {
			writes = append(writes, e)
		}
	}
	return reads, writes
}

// lockWrites attempts to CAS every write's cell lock_bit from 0 to 1, in
// sorted order (spec §4.5 step 3, the paper's no-wait variant). On the
// first failure it stops and returns the entries already locked so the
// caller can release them.
func lockWrites(writes []*entry) (ok bool, locked []*entry) {
	for _, w := range writes {
		if success, _ := w.cell.TryLock(); !success {
			return false, locked
		}
		locked = append(locked, w)
	}
	return true, writes
}

func unlockAll(entries []*entry) {
	for _, e := range entries {
		w := e.cell.Load()
		e.cell.Unlock(w.Wts, w.Delta)
	}
}

// isInWriteSet reports whether e also appears in writes (a read that was
// also locally written, per spec §4.5 step 5c "r is not also in W").
func isInWriteSet(e *entry, writes []*entry) bool {
	for _, w := range writes {
		if w == e {
			return true
		}
	}
	return false
}

// validateReads implements spec §4.5 step 5: for each read whose observed
// rts falls short of commit_ts, retry a CAS loop that either extends the
// cell's validity interval or aborts.
func validateReads(reads, writes []*entry, commitTS uint64) error {
	for _, r := range reads {
		if r.rts >= commitTS {
			continue
		}
		for {
			v1 := r.cell.Load()
			if v1.Wts != r.wts {
				return txnerrors.ErrConflict
			}
			if v1.Rts() <= commitTS {
				if v1.LockBit && !isInWriteSet(r, writes) {
					return txnerrors.ErrLocked
				}
				next := v1
				next.Delta = commitTS - v1.Wts
				if r.cell.CAS(v1, next) {
					break
				}
				continue
			}
			break
		}
	}
	return nil
}

// installWrites writes every W entry through the engine with
// is_ts_update=0, delta=0, wts=commit_ts, preserving the local message
// class, then releases the write lock while publishing the new (wts,
// delta) (spec §4.5 step 6).
func installWrites(t *Transaction, writes []*entry, commitTS uint64) error {
	for _, w := range writes {
		if !t.backend.BypassStorage() {
			eng := t.backend.Engine()
			var err error
			switch w.localClass {
			case tuple.ClassInsert:
				err = eng.Insert(w.key, w.localPayload, commitTS)
			case tuple.ClassUpdate:
				err = eng.Update(w.key, w.localPayload, commitTS)
			case tuple.ClassDelete:
				err = eng.Delete(w.key, commitTS)
			}
			if err != nil {
				return err
			}
		}
		w.cell.Unlock(commitTS, 0)
	}
	return nil
}

// release drops every entry's TSC refcount (spec §4.5 step 7); the cache
// itself performs the unconditional eviction writeback (invariant 4).
func release(t *Transaction, entries []*entry) {
	for _, e := range entries {
		if e.cell != nil {
			t.backend.Cache().GetAndRemove(e.key)
		}
	}
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
