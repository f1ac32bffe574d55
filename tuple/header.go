// Package tuple implements the on-disk wrapper around user values: a
// fixed-size timestamp header plus the merge function the storage engine
// invokes during compaction (spec §4.1, §6).
package tuple

import (
	"encoding/binary"
	"fmt"
)

// Class tags what an installed, value-bearing record represents. A
// ts-update record carries no class of its own; it is reconstituted from
// whatever value-bearing record it is eventually merged against.
type Class byte

const (
	ClassInsert Class = iota
	ClassUpdate
	ClassDelete
)

// headerSize is the fixed header length: 1 byte flags, 1 byte class,
// 8 bytes delta, 8 bytes wts. The reference implementation packs
// is_ts_update/delta/wts into 16 raw bytes with no room for a message
// class; this module needs one to carry INSERT/UPDATE/DELETE through
// merge (see DESIGN.md), so the header grows by two bytes: a whole flags
// byte and a class byte.
const headerSize = 18

const flagTSUpdate = 1 << 0

// Record is a decoded tuple: the timestamp header plus whatever payload
// (if any) follows it.
type Record struct {
	IsTSUpdate bool
	Class      Class
	Delta      uint64
	Wts        uint64
	Payload    []byte
}

// Rts returns wts + delta, the read timestamp implied by this record's
// header (invariant 1: wts <= rts).
func (r Record) Rts() uint64 { return r.Wts + r.Delta }

// Encode serializes a record into its on-disk representation.
func (r Record) Encode() []byte {
	buf := make([]byte, headerSize+len(r.Payload))
	if r.IsTSUpdate {
		buf[0] = flagTSUpdate
	}
	buf[1] = byte(r.Class)
	binary.BigEndian.PutUint64(buf[2:10], r.Delta)
	binary.BigEndian.PutUint64(buf[10:18], r.Wts)
	copy(buf[18:], r.Payload)
	return buf
}

// Decode parses a previously Encode-d record.
func Decode(raw []byte) (Record, error) {
	if len(raw) < headerSize {
		return Record{}, fmt.Errorf("tuple: record too short: %d bytes", len(raw))
	}
	r := Record{
		IsTSUpdate: raw[0]&flagTSUpdate != 0,
		Class:      Class(raw[1]),
		Delta:      binary.BigEndian.Uint64(raw[2:10]),
		Wts:        binary.BigEndian.Uint64(raw[10:18]),
	}
	if len(raw) > headerSize {
		payload := make([]byte, len(raw)-headerSize)
		copy(payload, raw[headerSize:])
		r.Payload = payload
	}
	return r, nil
}

// NewTSUpdate builds a timestamp-only record: no payload, carries only the
// (delta, wts) to install (spec §4.1).
func NewTSUpdate(delta, wts uint64) Record {
	return Record{IsTSUpdate: true, Delta: delta, Wts: wts}
}

// NewValue builds a value-bearing record of the given class.
func NewValue(class Class, wts uint64, payload []byte) Record {
	return Record{Class: class, Wts: wts, Payload: payload}
}
