package baseline

import (
	"github.com/google/uuid"

	"deltawriter/internal/deltaerr"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

// MergeInput is everything a produced delta contributes to the next
// baseline. Callers (the orchestrator) assemble it from the frozen indices
// once emission has succeeded.
type MergeInput struct {
	// EncID is the fresh GUID identifying the generation just produced. It
	// must differ from both the previous EncID and EncBaseID.
	EncID uuid.UUID

	Additions map[tokens.Table]map[oracle.SymbolID]tokens.RowID

	// TableDeltaSizes is, per table, the number of rows added this delta
	// (reference tables: row count; definition tables: len(added), never
	// rows.Length — pure updates of pre-existing rows do not grow a table).
	TableDeltaSizes map[tokens.Table]int

	// HeapContributions must already reflect each heap's alignment rule
	// (Blob and US pad to 4 bytes; Strings is unaligned; GUID entries are
	// 16 bytes and therefore always aligned).
	HeapContributions HeapLengths

	NewTypeToEventMap    map[tokens.RowID]tokens.RowID
	NewTypeToPropertyMap map[tokens.RowID]tokens.RowID
	NewMethodImpls       map[MethodImplKey]tokens.RowID

	AddedOrChangedMethods map[tokens.RowID]MethodDebugInfo

	// AnonymousTypeMap/SynthesizedMembers are only consulted when prev is a
	// generation-0 baseline (see Merge); otherwise prev's own maps are
	// carried forward untouched.
	AnonymousTypeMap   map[string]string
	SynthesizedMembers map[string]string
}

// Merge produces the next baseline from prev and the contributions of the
// delta just emitted, per §4.6. It never mutates prev.
func Merge(prev *Baseline, in MergeInput) (*Baseline, error) {
	if in.EncID == prev.EncID || in.EncID == prev.EncBaseID {
		return nil, deltaerr.Invariant("merge: fresh EncID %s collides with an existing generation id", in.EncID)
	}

	next := &Baseline{
		Ordinal:   prev.Ordinal + 1,
		EncID:     in.EncID,
		EncBaseID: prev.EncID,

		TableSizes: make(map[tokens.Table]int, len(prev.TableSizes)+len(in.TableDeltaSizes)),
		HeapLengths: HeapLengths{
			Strings: prev.HeapLengths.Strings + in.HeapContributions.Strings,
			US:      prev.HeapLengths.US + in.HeapContributions.US,
			Blob:    prev.HeapLengths.Blob + in.HeapContributions.Blob,
			GUID:    prev.HeapLengths.GUID + in.HeapContributions.GUID,
		},

		Additions:             make(map[tokens.Table]map[oracle.SymbolID]tokens.RowID, len(prev.Additions)),
		TypeToEventMap:        make(map[tokens.RowID]tokens.RowID, len(prev.TypeToEventMap)+len(in.NewTypeToEventMap)),
		TypeToPropertyMap:     make(map[tokens.RowID]tokens.RowID, len(prev.TypeToPropertyMap)+len(in.NewTypeToPropertyMap)),
		MethodImpls:           make(map[MethodImplKey]tokens.RowID, len(prev.MethodImpls)+len(in.NewMethodImpls)),
		AddedOrChangedMethods: make(map[tokens.RowID]MethodDebugInfo, len(prev.AddedOrChangedMethods)+len(in.AddedOrChangedMethods)),
	}

	for t, size := range prev.TableSizes {
		next.TableSizes[t] = size
	}
	for t, delta := range in.TableDeltaSizes {
		next.TableSizes[t] += delta
	}

	for t, m := range prev.Additions {
		merged := make(map[oracle.SymbolID]tokens.RowID, len(m))
		for id, row := range m {
			merged[id] = row
		}
		next.Additions[t] = merged
	}
	for t, m := range in.Additions {
		merged := next.Additions[t]
		if merged == nil {
			merged = make(map[oracle.SymbolID]tokens.RowID, len(m))
			next.Additions[t] = merged
		}
		for id, row := range m {
			if existing, ok := merged[id]; ok && existing != row {
				return nil, deltaerr.Invariant(
					"merge: symbol %v already has row %d in table %s, delta assigns conflicting row %d",
					id, existing, t, row)
			}
			merged[id] = row
		}
	}

	for row, mapRow := range prev.TypeToEventMap {
		next.TypeToEventMap[row] = mapRow
	}
	for row, mapRow := range in.NewTypeToEventMap {
		next.TypeToEventMap[row] = mapRow
	}
	for row, mapRow := range prev.TypeToPropertyMap {
		next.TypeToPropertyMap[row] = mapRow
	}
	for row, mapRow := range in.NewTypeToPropertyMap {
		next.TypeToPropertyMap[row] = mapRow
	}
	for key, row := range prev.MethodImpls {
		next.MethodImpls[key] = row
	}
	for key, row := range in.NewMethodImpls {
		next.MethodImpls[key] = row
	}

	for row, info := range prev.AddedOrChangedMethods {
		next.AddedOrChangedMethods[row] = info
	}
	for row, info := range in.AddedOrChangedMethods {
		next.AddedOrChangedMethods[row] = info
	}

	if prev.Ordinal == 0 {
		next.AnonymousTypeMap = copyStringMap(in.AnonymousTypeMap)
		next.SynthesizedMembers = copyStringMap(in.SynthesizedMembers)
	} else {
		next.AnonymousTypeMap = copyStringMap(prev.AnonymousTypeMap)
		next.SynthesizedMembers = copyStringMap(prev.SynthesizedMembers)
	}

	return next, nil
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
