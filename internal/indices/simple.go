package indices

import (
	"deltawriter/internal/deltaerr"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

// SimpleIndex backs the parameter and generic-parameter tables: params and
// generic parameters of a newly added or edited method are always added
// fresh in this delta, so there is no look-through to previous generations,
// only an added+rows+firstRowID store.
type SimpleIndex struct {
	table      tokens.Table
	firstRowID tokens.RowID

	added   map[oracle.SymbolID]tokens.RowID
	rows    []oracle.SymbolID
	frozen  bool
}

// NewSimpleIndex seeds the index with the baseline's row count for table.
func NewSimpleIndex(table tokens.Table, baselineRowCount int) *SimpleIndex {
	return &SimpleIndex{
		table:      table,
		firstRowID: tokens.RowID(baselineRowCount + 1),
		added:      make(map[oracle.SymbolID]tokens.RowID),
	}
}

// Add assigns id the next free row id.
func (idx *SimpleIndex) Add(id oracle.SymbolID) (tokens.RowID, error) {
	if idx.frozen {
		return 0, frozenWriteErr(idx.table)
	}
	if _, ok := idx.added[id]; ok {
		return 0, deltaerr.Invariant("indices: %s symbol %v added twice", idx.table, id)
	}
	row := tokens.RowID(int(idx.firstRowID) + len(idx.rows))
	idx.added[id] = row
	idx.rows = append(idx.rows, id)
	return row, nil
}

// TryGet reports the row id assigned to id this delta.
func (idx *SimpleIndex) TryGet(id oracle.SymbolID) (tokens.RowID, bool) {
	row, ok := idx.added[id]
	return row, ok
}

// Count is the number of rows added this delta.
func (idx *SimpleIndex) Count() int {
	return len(idx.rows)
}

// Freeze forbids further additions.
func (idx *SimpleIndex) Freeze() {
	idx.frozen = true
}

// Rows returns the ids in row-id order.
func (idx *SimpleIndex) Rows() []oracle.SymbolID {
	return idx.rows
}

// Table reports which metadata table this index backs.
func (idx *SimpleIndex) Table() tokens.Table {
	return idx.table
}

// FirstRowID is the first row id this delta may assign.
func (idx *SimpleIndex) FirstRowID() tokens.RowID {
	return idx.firstRowID
}
