package txn

import (
	"time"

	"github.com/tictocdb/tictocdb/config"
	"github.com/tictocdb/tictocdb/engine"
	"github.com/tictocdb/tictocdb/tscache"
	"github.com/tictocdb/tictocdb/tuple"
	"github.com/tictocdb/tictocdb/txnerrors"
)

// Backend is what a Transaction needs from its owning store: the engine,
// the shared timestamp cache, the configured merge/isolation behavior.
// Kept as an interface (rather than importing package store directly) to
// avoid a store<->txn import cycle, mirroring the way
// talent-plan-tinykv's mvcc.Transaction takes a storage.StorageReader
// rather than a concrete storage type.
type Backend interface {
	Engine() engine.Engine
	Cache() *tscache.Cache
	AppMerge() tuple.AppMerge
	AppFinalize() tuple.AppFinalize
	IsolationLevel() config.IsolationLevel
	BypassStorage() bool
}

// Transaction is one begin..commit/abort session (spec §3 "Transaction",
// §4.4).
type Transaction struct {
	backend Backend
	rws     *rwset
	done    bool
}

// Begin zeroes a new transaction record; no global state is touched
// (spec §4.4 "begin").
func Begin(backend Backend, rwsLimit int) *Transaction {
	return &Transaction{backend: backend, rws: newRWSet(rwsLimit)}
}

func (t *Transaction) checkOpen() error {
	if t.done {
		return txnerrors.ErrClosed
	}
	return nil
}

// attachCell ensures e has a TSC cell, installing one via insert_and_get
// if it doesn't (spec §4.2, §4.4).
func (t *Transaction) attachCell(e *entry) error {
	if e.cell != nil {
		return nil
	}
	cell, err := t.backend.Cache().InsertAndGet(e.key)
	if err != nil {
		return err
	}
	e.cell = cell
	return nil
}

func (t *Transaction) localWrite(key []byte, class tuple.Class, payload []byte) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	e, err := t.rws.getOrCreate(key, false)
	if err != nil {
		return err
	}
	if err := t.attachCell(e); err != nil {
		return err
	}
	return combineLocal(e, class, payload, t.backend.AppMerge())
}

// Insert appends a local INSERT write (spec §4.4 "insert").
func (t *Transaction) Insert(key, value []byte) error {
	return t.localWrite(key, tuple.ClassInsert, value)
}

// Update appends a local UPDATE write (spec §4.4 "update").
func (t *Transaction) Update(key, delta []byte) error {
	return t.localWrite(key, tuple.ClassUpdate, delta)
}

// Delete appends a local DELETE write; deletes encode as a distinguished
// definitive message (spec §4.4 "delete").
func (t *Transaction) Delete(key []byte) error {
	return t.localWrite(key, tuple.ClassDelete, nil)
}

// Lookup implements spec §4.4 "lookup": attach the TSC cell; return the
// local write if one exists (read-your-write); otherwise spin past a held lock_bit,
// perform the underlying KV lookup, adopt max(header, cell) via CAS, and
// record the observed (wts, rts) into the RWS entry.
func (t *Transaction) Lookup(key []byte) (found bool, value []byte, err error) {
	if err := t.checkOpen(); err != nil {
		return false, nil, err
	}
	e, err := t.rws.getOrCreate(key, true)
	if err != nil {
		return false, nil, err
	}
	if err := t.attachCell(e); err != nil {
		return false, nil, err
	}

	if e.hasLocalWrite {
		if e.localClass == tuple.ClassDelete {
			return false, nil, nil
		}
		return true, e.localPayload, nil
	}

	if t.backend.BypassStorage() {
		w := e.cell.Load()
		e.wts, e.rts = w.Wts, w.Rts()
		return false, nil, nil
	}

	for {
		w := e.cell.Load()
		if !w.LockBit {
			break
		}
		time.Sleep(time.Microsecond)
	}

	foundRec, rec, err := t.backend.Engine().Lookup(key)
	if err != nil {
		return false, nil, txnerrors.Wrap(err)
	}

	for {
		cur := e.cell.Load()
		next := cur
		if rec.Wts > next.Wts {
			next.Wts = rec.Wts
		}
		if rec.Delta > next.Delta {
			next.Delta = rec.Delta
		}
		if next == cur {
			e.wts, e.rts = cur.Wts, cur.Rts()
			break
		}
		if e.cell.CAS(cur, next) {
			e.wts, e.rts = next.Wts, next.Rts()
			break
		}
	}

	if !foundRec || rec.IsTSUpdate || rec.Class == tuple.ClassDelete {
		return false, nil, nil
	}
	return true, rec.Payload, nil
}

// Abort releases all TSC references and discards the RWS (spec §4.4
// "abort"). Always succeeds.
func (t *Transaction) Abort() error {
	if t.done {
		return nil
	}
	for _, e := range t.rws.entries {
		if e.cell != nil {
			t.backend.Cache().GetAndRemove(e.key)
		}
	}
	t.done = true
	return nil
}

// Commit runs the TicToc commit validator (see commit.go).
func (t *Transaction) Commit() error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	err := runCommit(t)
	t.done = true
	return err
}
