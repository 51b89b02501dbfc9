// Package indices implements the per-table row stores the writer threads
// through a single delta: append-only while the delta is being built,
// frozen (sorted, read-only) once emission starts reading rows in order.
package indices

import (
	"deltawriter/internal/deltaerr"
	"deltawriter/internal/tokens"
)

// DefinitionRow is one row touched by a definition index this delta: either
// a freshly added definition or a pre-existing one that was merely updated.
type DefinitionRow struct {
	RowID tokens.RowID
	Added bool // false means this is a Updated-only row (addUpdated)
}

func frozenWriteErr(table tokens.Table) error {
	return deltaerr.Invariant("indices: write against frozen %s index", table)
}

func nonContiguousErr(table tokens.Table, firstRowID tokens.RowID, count int, got tokens.RowID) error {
	return deltaerr.Invariant(
		"indices: %s addition %d falls outside contiguous range [%d, %d)",
		table, got, firstRowID, tokens.RowID(uint32(firstRowID)+uint32(count)))
}
