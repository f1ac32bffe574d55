package engine

import (
	"bytes"
	"sync"

	"github.com/petar/GoLLRB/llrb"
	"github.com/tictocdb/tictocdb/tuple"
)

// memItem is an llrb.Item holding one encoded tuple record, grounded on
// talent-plan-tinykv/kv/storage/mem_storage.go's memItem.
type memItem struct {
	key   []byte
	value []byte
}

func (it memItem) Less(than llrb.Item) bool {
	return bytes.Compare(it.key, than.(memItem).key) < 0
}

// MemEngine is an in-memory Engine backed by an LLRB tree, used as the
// engine in tests (no durability). BypassStorage mode uses no engine.
type MemEngine struct {
	mu          sync.Mutex
	tree        *llrb.LLRB
	appMerge    tuple.AppMerge
	appFinalize tuple.AppFinalize
}

// NewMemEngine creates an empty in-memory engine. A nil appMerge/
// appFinalize falls back to tuple.DefaultAppMerge/DefaultAppFinalize.
func NewMemEngine(appMerge tuple.AppMerge, appFinalize tuple.AppFinalize) *MemEngine {
	if appMerge == nil {
		appMerge = tuple.DefaultAppMerge
	}
	if appFinalize == nil {
		appFinalize = tuple.DefaultAppFinalize
	}
	return &MemEngine{tree: llrb.New(), appMerge: appMerge, appFinalize: appFinalize}
}

func (e *MemEngine) write(key []byte, rec tuple.Record) error {
	newRaw := rec.Encode()

	e.mu.Lock()
	defer e.mu.Unlock()

	existing := e.tree.Get(memItem{key: key})
	if existing == nil {
		e.tree.ReplaceOrInsert(memItem{key: append([]byte(nil), key...), value: newRaw})
		return nil
	}
	oldRaw := existing.(memItem).value
	merged, err := tuple.Merge(key, oldRaw, newRaw, e.appMerge)
	if err != nil {
		return err
	}
	e.tree.ReplaceOrInsert(memItem{key: append([]byte(nil), key...), value: merged})
	return nil
}

func (e *MemEngine) Insert(key, value []byte, wts uint64) error {
	return e.write(key, tuple.NewValue(tuple.ClassInsert, wts, value))
}

func (e *MemEngine) Update(key, value []byte, wts uint64) error {
	return e.write(key, tuple.NewValue(tuple.ClassUpdate, wts, value))
}

func (e *MemEngine) Delete(key []byte, wts uint64) error {
	return e.write(key, tuple.NewValue(tuple.ClassDelete, wts, nil))
}

func (e *MemEngine) WriteTSUpdate(key []byte, wts, delta uint64) error {
	return e.write(key, tuple.NewTSUpdate(delta, wts))
}

func (e *MemEngine) Lookup(key []byte) (bool, tuple.Record, error) {
	e.mu.Lock()
	item := e.tree.Get(memItem{key: key})
	e.mu.Unlock()

	if item == nil {
		return false, tuple.Record{}, nil
	}
	raw := item.(memItem).value
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

func (e *MemEngine) Close() error { return nil }
