package indices

import (
	"deltawriter/internal/baseline"
	"deltawriter/internal/tokens"
)

// MethodImplIndex backs the MethodImpl table, keyed by (methodDefRow,
// occurrence). Occurrence starts at 1 and increments past every occurrence
// already known, whether recorded in the baseline or added earlier in this
// same delta.
type MethodImplIndex struct {
	firstRowID tokens.RowID

	baseline map[baseline.MethodImplKey]tokens.RowID
	added    map[baseline.MethodImplKey]tokens.RowID
	rows     []baseline.MethodImplKey
	frozen   bool
}

// NewMethodImplIndex seeds the index with the baseline's row count for the
// MethodImpl table and its existing occurrence keys.
func NewMethodImplIndex(baselineRowCount int, baselineImpls map[baseline.MethodImplKey]tokens.RowID) *MethodImplIndex {
	return &MethodImplIndex{
		firstRowID: tokens.RowID(baselineRowCount + 1),
		baseline:   baselineImpls,
		added:      make(map[baseline.MethodImplKey]tokens.RowID),
	}
}

// NextOccurrence returns the next free occurrence index for methodDefRow:
// the lowest occurrence, counting up from 1, that is recorded neither in
// the baseline nor in this delta.
func (idx *MethodImplIndex) NextOccurrence(methodDefRow tokens.RowID) int {
	occ := 1
	for {
		key := baseline.MethodImplKey{MethodDefRow: methodDefRow, Occurrence: occ}
		if _, ok := idx.baseline[key]; ok {
			occ++
			continue
		}
		if _, ok := idx.added[key]; ok {
			occ++
			continue
		}
		return occ
	}
}

// Add assigns key the next free MethodImpl row.
func (idx *MethodImplIndex) Add(key baseline.MethodImplKey) (tokens.RowID, error) {
	if idx.frozen {
		return 0, frozenWriteErr(tokens.MethodImpl)
	}
	row := tokens.RowID(int(idx.firstRowID) + len(idx.rows))
	idx.added[key] = row
	idx.rows = append(idx.rows, key)
	return row, nil
}

// AddedCount is the number of MethodImpl rows added this delta.
func (idx *MethodImplIndex) AddedCount() int {
	return len(idx.rows)
}

// Added returns the occurrence-key->row associations created this delta,
// for the baseline merge.
func (idx *MethodImplIndex) Added() map[baseline.MethodImplKey]tokens.RowID {
	out := make(map[baseline.MethodImplKey]tokens.RowID, len(idx.added))
	for k, r := range idx.added {
		out[k] = r
	}
	return out
}

// Freeze forbids further additions.
func (idx *MethodImplIndex) Freeze() {
	idx.frozen = true
}

// FirstRowID is the first row id this delta may assign.
func (idx *MethodImplIndex) FirstRowID() tokens.RowID {
	return idx.firstRowID
}
