package engine

import (
	"os"

	"github.com/coocood/badger"
	"github.com/pingcap/errors"
	"github.com/tictocdb/tictocdb/tuple"
)

// BadgerEngine is the durable Engine backed by github.com/coocood/badger,
// grounded on engine_util.CreateDB's option tuning and
// standalone_storage.go's direct db.NewTransaction/tx.Set/tx.Commit use.
//
// The reference SplinterDB implementation folds merges via a callback the
// storage engine invokes during background compaction. This module instead
// folds merges eagerly, inside a single badger read-modify-write
// transaction per write (db.Update(func(txn *badger.Txn) error {...}),
// txn.Get/txn.SetEntry/txn.Delete) — the same pattern write_batch.go's
// WriteToDB uses. See DESIGN.md for why this was chosen over badger's
// MergeOperator API.
type BadgerEngine struct {
	db          *badger.DB
	appMerge    tuple.AppMerge
	appFinalize tuple.AppFinalize
}

// BadgerTuning mirrors the subset of config.Config that engine_util.CreateDB
// reads when opening a badger.DB.
type BadgerTuning struct {
	ValueLogFileSize int64
	NumCompactors    int
	NumMemtables     int
	ValueThreshold   int
}

// OpenBadgerEngine opens (creating if absent) a badger-backed engine at dir.
func OpenBadgerEngine(dir string, tuning BadgerTuning, appMerge tuple.AppMerge, appFinalize tuple.AppFinalize) (*BadgerEngine, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.WithStack(err)
	}
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	if tuning.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = tuning.ValueLogFileSize
	}
	if tuning.NumCompactors > 0 {
		opts.NumCompactors = tuning.NumCompactors
	}
	if tuning.NumMemtables > 0 {
		opts.NumMemtables = tuning.NumMemtables
	}
	if tuning.ValueThreshold > 0 {
		opts.ValueThreshold = tuning.ValueThreshold
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if appMerge == nil {
		appMerge = tuple.DefaultAppMerge
	}
	if appFinalize == nil {
		appFinalize = tuple.DefaultAppFinalize
	}
	return &BadgerEngine{db: db, appMerge: appMerge, appFinalize: appFinalize}, nil
}

func (e *BadgerEngine) write(key []byte, rec tuple.Record) error {
	newRaw := rec.Encode()
	return e.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return txn.SetEntry(&badger.Entry{Key: key, Value: newRaw})
		}
		if err != nil {
			return err
		}
		oldRaw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		merged, err := tuple.Merge(key, oldRaw, newRaw, e.appMerge)
		if err != nil {
			return err
		}
		return txn.SetEntry(&badger.Entry{Key: key, Value: merged})
	})
}

func (e *BadgerEngine) Insert(key, value []byte, wts uint64) error {
	if err := e.write(key, tuple.NewValue(tuple.ClassInsert, wts, value)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (e *BadgerEngine) Update(key, value []byte, wts uint64) error {
	if err := e.write(key, tuple.NewValue(tuple.ClassUpdate, wts, value)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (e *BadgerEngine) Delete(key []byte, wts uint64) error {
	if err := e.write(key, tuple.NewValue(tuple.ClassDelete, wts, nil)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (e *BadgerEngine) WriteTSUpdate(key []byte, wts, delta uint64) error {
	if err := e.write(key, tuple.NewTSUpdate(delta, wts)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (e *BadgerEngine) Lookup(key []byte) (bool, tuple.Record, error) {
	var raw []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		raw = v
		return nil
	})
	if err != nil {
		return false, tuple.Record{}, errors.WithStack(err)
	}
	if raw == nil {
		return false, tuple.Record{}, nil
	}
	finalRaw, err := tuple.FinalMerge(key, raw, e.appFinalize)
	if err != nil {
		return false, tuple.Record{}, err
	}
	rec, err := tuple.Decode(finalRaw)
	if err != nil {
		return false, tuple.Record{}, err
	}
	return true, rec, nil
}

func (e *BadgerEngine) Close() error {
	return e.db.Close()
}
