package indices

import (
	"deltawriter/internal/tokens"
)

// MapIndex backs EventMap and PropertyMap: keyed by the owning TypeDef's
// row, with look-through to the baseline's typeToEventMap/typeToPropertyMap
// so a type that already has a map row never gets a second one. EnsureRow
// is called at most once per type, the first time the delta touches an
// event or property on it.
type MapIndex struct {
	table      tokens.Table
	firstRowID tokens.RowID

	baseline map[tokens.RowID]tokens.RowID
	added    map[tokens.RowID]tokens.RowID
	rows     []tokens.RowID
	frozen   bool
}

// NewMapIndex seeds the index with the baseline's row count for table
// (EventMap or PropertyMap) and the baseline's existing type->map-row
// associations.
func NewMapIndex(table tokens.Table, baselineRowCount int, baselineMap map[tokens.RowID]tokens.RowID) *MapIndex {
	return &MapIndex{
		table:      table,
		firstRowID: tokens.RowID(baselineRowCount + 1),
		baseline:   baselineMap,
		added:      make(map[tokens.RowID]tokens.RowID),
	}
}

// TryGet reports the map row already associated with typeRow, from this
// delta or any earlier generation.
func (idx *MapIndex) TryGet(typeRow tokens.RowID) (tokens.RowID, bool) {
	if row, ok := idx.added[typeRow]; ok {
		return row, true
	}
	row, ok := idx.baseline[typeRow]
	return row, ok
}

// EnsureRow returns typeRow's existing map row if one is already known, or
// assigns a fresh one.
func (idx *MapIndex) EnsureRow(typeRow tokens.RowID) (tokens.RowID, error) {
	if row, ok := idx.TryGet(typeRow); ok {
		return row, nil
	}
	if idx.frozen {
		return 0, frozenWriteErr(idx.table)
	}
	row := tokens.RowID(int(idx.firstRowID) + len(idx.rows))
	idx.added[typeRow] = row
	idx.rows = append(idx.rows, typeRow)
	return row, nil
}

// AddedCount is the number of map rows added this delta.
func (idx *MapIndex) AddedCount() int {
	return len(idx.rows)
}

// Rows returns the map-table row ids assigned this delta, ascending (they
// are always assigned in contiguous order, so no sort is needed).
func (idx *MapIndex) Rows() []tokens.RowID {
	out := make([]tokens.RowID, len(idx.rows))
	for i := range idx.rows {
		out[i] = tokens.RowID(int(idx.firstRowID) + i)
	}
	return out
}

// FirstRowID is the first row id this delta may assign.
func (idx *MapIndex) FirstRowID() tokens.RowID {
	return idx.firstRowID
}

// Added returns the type-row->map-row associations created this delta, for
// the baseline merge.
func (idx *MapIndex) Added() map[tokens.RowID]tokens.RowID {
	out := make(map[tokens.RowID]tokens.RowID, len(idx.added))
	for t, r := range idx.added {
		out[t] = r
	}
	return out
}

// Freeze forbids further additions.
func (idx *MapIndex) Freeze() {
	idx.frozen = true
}

// Table reports which metadata table this index backs.
func (idx *MapIndex) Table() tokens.Table {
	return idx.table
}
