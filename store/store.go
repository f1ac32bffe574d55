// Package store wires together the timestamp cache, the storage engine,
// and the transaction layer into the handle applications open (spec §4.6,
// §6 "create/open/close").
package store

import (
	"sync/atomic"

	"github.com/tictocdb/tictocdb/config"
	"github.com/tictocdb/tictocdb/engine"
	"github.com/tictocdb/tictocdb/internal/logutil"
	"github.com/tictocdb/tictocdb/tscache"
	"github.com/tictocdb/tictocdb/tuple"
	"github.com/tictocdb/tictocdb/txn"
	"github.com/tictocdb/tictocdb/txnerrors"
)

// Store is a transactional handle over an embedded KV engine (spec §4.6).
// It implements txn.Backend so a *Transaction can reach the engine and
// cache without importing package store back (avoids an import cycle).
type Store struct {
	cfg *config.Config

	eng   engine.Engine
	cache *tscache.Cache

	appMerge    tuple.AppMerge
	appFinalize tuple.AppFinalize

	isolation int32 // config.IsolationLevel, accessed atomically

	registeredThreads int32 // count of outstanding RegisterThread calls
	closed            int32
}

// Options configures the merge callbacks a Store installs into the
// underlying engine (spec §4.1's "user-supplied merge function", §6
// "installs the transactional merge functions").
type Options struct {
	AppMerge    tuple.AppMerge
	AppFinalize tuple.AppFinalize
}

// Create opens (creating if absent) a Store per cfg.
func Create(cfg *config.Config, opts Options) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	appMerge := opts.AppMerge
	if appMerge == nil {
		appMerge = tuple.DefaultAppMerge
	}
	appFinalize := opts.AppFinalize
	if appFinalize == nil {
		appFinalize = tuple.DefaultAppFinalize
	}

	s := &Store{
		cfg:         cfg,
		appMerge:    appMerge,
		appFinalize: appFinalize,
		isolation:   int32(cfg.IsolationLevel),
	}

	if !cfg.BypassStorage {
		eng, err := engine.OpenBadgerEngine(cfg.DBPath, engine.BadgerTuning{
			ValueLogFileSize: cfg.ValueLogFileSize,
			NumCompactors:    cfg.NumCompactors,
			NumMemtables:     cfg.NumMemtables,
			ValueThreshold:   cfg.ValueThreshold,
		}, appMerge, appFinalize)
		if err != nil {
			return nil, txnerrors.Wrap(err)
		}
		s.eng = eng
	}

	capacity := 1 << cfg.CacheLogSlots
	s.cache = tscache.New(capacity, s.onEvict)

	logutil.Infof("store: opened at %s (bypass=%v, isolation=%s)", cfg.DBPath, cfg.BypassStorage, cfg.IsolationLevel)
	return s, nil
}

// Open is an alias of Create: both an embedded LSM engine and this
// module's own bookkeeping are schema-free, so opening existing storage
// and creating fresh storage follow the same path (spec §6 "open").
func Open(cfg *config.Config, opts Options) (*Store, error) {
	return Create(cfg, opts)
}

// onEvict is the timestamp cache's writeback callback: whenever a cell's
// refcount reaches zero, its last (wts, delta) is persisted as a
// timestamp-only update (spec invariant 4, §4.5 step 7). In BypassStorage
// mode there is no engine to write back to; the bypass is documented as
// isolating protocol overhead from storage I/O entirely, so eviction
// writeback is a no-op there (see SPEC_FULL.md §12).
func (s *Store) onEvict(key []byte, word tscache.TSWord) {
	if s.eng == nil {
		return
	}
	if err := s.eng.WriteTSUpdate(key, word.Wts, word.Delta); err != nil {
		logutil.Warnf("store: eviction writeback failed for key %q: %v", key, err)
	}
}

// Close marks the store closed, so later Begin calls return ErrClosed, and
// closes the engine (spec §6 "close"). It does not wait for transactions
// already begun, and it does not clear the timestamp cache.
func (s *Store) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if s.eng != nil {
		return s.eng.Close()
	}
	return nil
}

// RegisterThread mirrors the underlying engine's per-thread registration
// requirement (spec §6, §7 "usage-error... unregistered thread"). The
// engines this module wires (badger, an in-memory LLRB tree) have no
// per-thread state of their own to set up, so this only tracks that at
// least one caller has registered; Begin refuses to start a transaction
// while the count is zero.
func (s *Store) RegisterThread() {
	atomic.AddInt32(&s.registeredThreads, 1)
}

// DeregisterThread reverses RegisterThread.
func (s *Store) DeregisterThread() {
	atomic.AddInt32(&s.registeredThreads, -1)
}

// SetIsolationLevel selects serializable or a weaker variant (spec §6
// "set_isolation_level").
func (s *Store) SetIsolationLevel(level config.IsolationLevel) {
	atomic.StoreInt32(&s.isolation, int32(level))
}

// Begin starts a new transaction against this store (spec §4.4 "begin").
// Returns ErrUnregisteredThread while no RegisterThread call is
// outstanding; the count is store-wide, not per thread (spec §7
// "usage-error... Defensive checks; fatal").
func (s *Store) Begin() (*txn.Transaction, error) {
	if atomic.LoadInt32(&s.closed) != 0 {
		return nil, txnerrors.ErrClosed
	}
	if atomic.LoadInt32(&s.registeredThreads) <= 0 {
		return nil, txnerrors.ErrUnregisteredThread
	}
	return txn.Begin(s, s.cfg.RWSetLimit), nil
}

// The following methods satisfy txn.Backend.

func (s *Store) Engine() engine.Engine { return s.eng }
func (s *Store) Cache() *tscache.Cache { return s.cache }
func (s *Store) AppMerge() tuple.AppMerge { return s.appMerge }
func (s *Store) AppFinalize() tuple.AppFinalize { return s.appFinalize }
func (s *Store) BypassStorage() bool { return s.cfg.BypassStorage }

func (s *Store) IsolationLevel() config.IsolationLevel {
	return config.IsolationLevel(atomic.LoadInt32(&s.isolation))
}
