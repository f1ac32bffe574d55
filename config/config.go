// Package config holds the tunables for a tictocdb store: the timestamp
// cache's capacity, the isolation level, the bypass-storage benchmarking
// knob, and the underlying badger engine's directory and tuning options.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// IsolationLevel selects how aggressively commit_ts is biased forward at
// the start of validation (spec §4.5, "Isolation").
type IsolationLevel int

const (
	// Serializable orders transactions by commit_ts with no bias.
	Serializable IsolationLevel = iota
	// SiloStyle adds 1 to every read's observed wts before folding it into
	// commit_ts, trading some read concurrency for a cheaper validation
	// path (see EXPERIMENTAL_MODE_SILO in the reference implementation).
	SiloStyle
)

func (l IsolationLevel) String() string {
	switch l {
	case SiloStyle:
		return "silo"
	default:
		return "serializable"
	}
}

// Config is the configuration accepted by store.Create / store.Open.
type Config struct {
	// DBPath is the directory the badger engine stores its data in.
	// Ignored when BypassStorage is set.
	DBPath string

	// CacheLogSlots is log2 of the timestamp cache's capacity. The cache
	// holds at most 2^CacheLogSlots live cells at a time; exceeding that
	// with every existing cell pinned (refcount > 0) is a resource
	// exhaustion error.
	CacheLogSlots uint

	// IsolationLevel selects the commit_ts bias (see IsolationLevel).
	IsolationLevel IsolationLevel

	// BypassStorage, when true, skips the underlying KV engine entirely:
	// Lookup never reads through to the engine and Commit never installs
	// writes. Only the timestamp cache and read/write-set bookkeeping run.
	// Useful for isolating concurrency-control overhead in benchmarks.
	BypassStorage bool

	// RWSetLimit bounds the number of distinct keys a single transaction
	// may touch before resource-exhaustion is returned.
	RWSetLimit int

	// Badger tuning, passed through to the underlying engine (mirrors
	// engine_util.CreateDB's use of these fields).
	ValueLogFileSize int64
	NumCompactors    int
	NumMemtables     int
	ValueThreshold   int
}

func (c *Config) Validate() error {
	if c.CacheLogSlots == 0 {
		return fmt.Errorf("config: CacheLogSlots must be greater than 0")
	}
	if c.RWSetLimit <= 0 {
		return fmt.Errorf("config: RWSetLimit must be greater than 0")
	}
	if !c.BypassStorage && c.DBPath == "" {
		return fmt.Errorf("config: DBPath must be set unless BypassStorage is enabled")
	}
	return nil
}

func NewDefaultConfig() *Config {
	return &Config{
		DBPath:           "/tmp/tictocdb",
		CacheLogSlots:    20,
		IsolationLevel:   Serializable,
		RWSetLimit:       256,
		ValueLogFileSize: 256 << 20,
		NumCompactors:    2,
		NumMemtables:     4,
		ValueThreshold:   32,
	}
}

// LoadFile reads a TOML config file, starting from the default config and
// overriding whatever fields are present.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	cfg := NewDefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}
