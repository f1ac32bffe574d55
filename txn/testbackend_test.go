package txn

import (
	"github.com/tictocdb/tictocdb/config"
	"github.com/tictocdb/tictocdb/engine"
	"github.com/tictocdb/tictocdb/tscache"
	"github.com/tictocdb/tictocdb/tuple"
)

// testBackend is a minimal txn.Backend for exercising Transaction/commit
// logic against an in-memory engine, grounded on talent-plan-tinykv's
// pattern of testing mvcc.Transaction against storage.NewMemStorage.
type testBackend struct {
	eng         engine.Engine
	cache       *tscache.Cache
	appMerge    tuple.AppMerge
	appFinalize tuple.AppFinalize
	isolation   config.IsolationLevel
	bypass      bool
}

func newTestBackend(capacity int) *testBackend {
	return newTestBackendWithMerge(capacity, tuple.DefaultAppMerge)
}

func newTestBackendWithMerge(capacity int, appMerge tuple.AppMerge) *testBackend {
	b := &testBackend{
		appMerge:    appMerge,
		appFinalize: tuple.DefaultAppFinalize,
	}
	b.eng = engine.NewMemEngine(b.appMerge, b.appFinalize)
	b.cache = tscache.New(capacity, b.onEvict)
	return b
}

func (b *testBackend) onEvict(key []byte, word tscache.TSWord) {
	if b.bypass {
		return
	}
	_ = b.eng.WriteTSUpdate(key, word.Wts, word.Delta)
}

func (b *testBackend) Engine() engine.Engine              { return b.eng }
func (b *testBackend) Cache() *tscache.Cache               { return b.cache }
func (b *testBackend) AppMerge() tuple.AppMerge             { return b.appMerge }
func (b *testBackend) AppFinalize() tuple.AppFinalize       { return b.appFinalize }
func (b *testBackend) IsolationLevel() config.IsolationLevel { return b.isolation }
func (b *testBackend) BypassStorage() bool                  { return b.bypass }
