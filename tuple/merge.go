package tuple

// AppMerge combines two value-bearing payloads for the same key during
// compaction, older first. It must be pure and allocation-frugal since the
// storage engine drives it synchronously from the compaction path.
type AppMerge func(key, oldPayload, newPayload []byte) []byte

// AppFinalize transforms a surviving payload at final merge (the last time
// the storage engine folds all records for a key into one, e.g. before it
// becomes visible to a point query).
type AppFinalize func(key, payload []byte) []byte

// DefaultAppMerge is last-write-wins: the newer payload survives untouched.
func DefaultAppMerge(_ []byte, _, newPayload []byte) []byte { return newPayload }

// DefaultAppFinalize is the identity transform.
func DefaultAppFinalize(_ []byte, payload []byte) []byte { return payload }

// Merge implements the three pairwise compaction-time merge rules from
// spec §4.1; FinalMerge implements the fourth.
// old and new are encoded records for the same key, old having been
// written first. The result is the encoded record that should replace
// both in the engine.
func Merge(key []byte, oldRaw, newRaw []byte, appMerge AppMerge) ([]byte, error) {
	if appMerge == nil {
		appMerge = DefaultAppMerge
	}
	oldR, err := Decode(oldRaw)
	if err != nil {
		return nil, err
	}
	newR, err := Decode(newRaw)
	if err != nil {
		return nil, err
	}

	switch {
	case oldR.IsTSUpdate:
		// old is ts-update, new is anything: discard the old record, its
		// timestamps are stale relative to any later real write.
		return newRaw, nil

	case !oldR.IsTSUpdate && newR.IsTSUpdate:
		// old is value-bearing, new is ts-update: keep old's class and
		// payload, adopt new's (delta, wts).
		merged := Record{
			IsTSUpdate: false,
			Class:      oldR.Class,
			Delta:      newR.Delta,
			Wts:        newR.Wts,
			Payload:    oldR.Payload,
		}
		return merged.Encode(), nil

	default:
		// both value-bearing: defer to the application merge over the raw
		// payload, wrap with the newer record's class and timestamps.
		mergedPayload := appMerge(key, oldR.Payload, newR.Payload)
		merged := Record{
			IsTSUpdate: false,
			Class:      newR.Class,
			Delta:      newR.Delta,
			Wts:        newR.Wts,
			Payload:    mergedPayload,
		}
		return merged.Encode(), nil
	}
}

// FinalMerge applies the application's final-merge over a surviving
// record's payload, rewrapping with the same header (spec §4.1, "final
// merge").
func FinalMerge(key []byte, raw []byte, appFinalize AppFinalize) ([]byte, error) {
	if appFinalize == nil {
		appFinalize = DefaultAppFinalize
	}
	r, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if r.IsTSUpdate {
		return raw, nil
	}
	r.Payload = appFinalize(key, r.Payload)
	return r.Encode(), nil
}
