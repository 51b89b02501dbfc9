package indices

import (
	"sort"

	"deltawriter/internal/deltaerr"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

// DefinitionIndex is the per-table store for entities with stable identity
// across generations: TypeDef, MethodDef, Field, Event, Property. It
// resolves a symbol's row id by looking through, in order, this delta's own
// additions, the baseline's additions from earlier generations, and the
// definition map for symbols that have existed since generation 0;
// definition-map hits are memoized so later lookups are O(1).
type DefinitionIndex struct {
	table      tokens.Table
	firstRowID tokens.RowID

	baseline map[oracle.SymbolID]tokens.RowID
	defMap   oracle.DefinitionMap
	memo     map[oracle.SymbolID]tokens.RowID

	added   map[oracle.SymbolID]tokens.RowID
	order   []oracle.SymbolID
	rows    []DefinitionRow
	reverse map[tokens.RowID]oracle.SymbolID

	frozen bool
}

// NewDefinitionIndex constructs an index seeded with the baseline's
// existing row count for table, its prior additions (for look-through),
// and the definition map used for symbols older than the baseline's own
// additions.
func NewDefinitionIndex(table tokens.Table, baselineRowCount int, baselineAdditions map[oracle.SymbolID]tokens.RowID, defMap oracle.DefinitionMap) *DefinitionIndex {
	return &DefinitionIndex{
		table:      table,
		firstRowID: tokens.RowID(baselineRowCount + 1),
		baseline:   baselineAdditions,
		defMap:     defMap,
		memo:       make(map[oracle.SymbolID]tokens.RowID),
		added:      make(map[oracle.SymbolID]tokens.RowID),
		reverse:    make(map[tokens.RowID]oracle.SymbolID),
	}
}

// TryGet resolves id to a row id without mutating the index, other than
// memoizing a definition-map hit.
func (idx *DefinitionIndex) TryGet(id oracle.SymbolID) (tokens.RowID, bool) {
	if row, ok := idx.added[id]; ok {
		return row, true
	}
	if row, ok := idx.baseline[id]; ok {
		return row, true
	}
	if row, ok := idx.memo[id]; ok {
		return row, true
	}
	if idx.defMap != nil {
		if row, ok := idx.defMap.TryGetRowID(id); ok {
			idx.memo[id] = row
			return row, true
		}
	}
	return 0, false
}

// Add assigns id the next free row id in this table. It is an invariant
// violation to add a symbol already known to the index (use AddUpdated for
// a pre-existing definition) or to add after Freeze.
func (idx *DefinitionIndex) Add(id oracle.SymbolID) (tokens.RowID, error) {
	if idx.frozen {
		return 0, frozenWriteErr(idx.table)
	}
	if _, ok := idx.TryGet(id); ok {
		return 0, deltaerr.Invariant("indices: %s symbol %v already has a row; use AddUpdated", idx.table, id)
	}
	row := tokens.RowID(int(idx.firstRowID) + len(idx.added))
	idx.added[id] = row
	idx.order = append(idx.order, id)
	idx.reverse[row] = id
	idx.rows = append(idx.rows, DefinitionRow{RowID: row, Added: true})
	return row, nil
}

// AddUpdated records that a pre-existing definition changed in this delta.
// Its row id is not reassigned; the lookup must already succeed.
func (idx *DefinitionIndex) AddUpdated(id oracle.SymbolID) (tokens.RowID, error) {
	if idx.frozen {
		return 0, frozenWriteErr(idx.table)
	}
	row, ok := idx.TryGet(id)
	if !ok {
		return 0, deltaerr.Invariant("indices: %s symbol %v has no existing row to update", idx.table, id)
	}
	idx.reverse[row] = id
	idx.rows = append(idx.rows, DefinitionRow{RowID: row, Added: false})
	return row, nil
}

// IsAddedNotChanged reports whether id was added fresh in this delta, as
// opposed to being a pre-existing definition recorded via AddUpdated.
func (idx *DefinitionIndex) IsAddedNotChanged(id oracle.SymbolID) bool {
	_, ok := idx.added[id]
	return ok
}

// Get is the reverse lookup used when emitting rows in id order. It only
// resolves ids touched by this delta (additions or updates); ids untouched
// this delta are not tracked here.
func (idx *DefinitionIndex) Get(row tokens.RowID) (oracle.SymbolID, bool) {
	id, ok := idx.reverse[row]
	return id, ok
}

// AddedCount is the number of fresh rows this delta assigned in this table,
// used for deltaSizes (pure updates of pre-existing rows do not grow the
// table).
func (idx *DefinitionIndex) AddedCount() int {
	return len(idx.added)
}

// Added returns the symbol->row map assigned by this delta, for the
// baseline merge.
func (idx *DefinitionIndex) Added() map[oracle.SymbolID]tokens.RowID {
	out := make(map[oracle.SymbolID]tokens.RowID, len(idx.added))
	for id, row := range idx.added {
		out[id] = row
	}
	return out
}

// Freeze sorts the touched-rows list ascending by row id and forbids
// further mutation.
func (idx *DefinitionIndex) Freeze() {
	if idx.frozen {
		return
	}
	sort.Slice(idx.rows, func(i, j int) bool { return idx.rows[i].RowID < idx.rows[j].RowID })
	idx.frozen = true
}

// Rows returns the rows touched this delta, sorted ascending once frozen.
func (idx *DefinitionIndex) Rows() []DefinitionRow {
	return idx.rows
}

// Table reports which metadata table this index backs.
func (idx *DefinitionIndex) Table() tokens.Table {
	return idx.table
}
