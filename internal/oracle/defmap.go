package oracle

import "deltawriter/internal/tokens"

// DefinitionMap resolves a definition that existed since generation 0 (or
// any earlier generation not covered by the baseline's own addition maps)
// to its previously assigned row id. Lookups that succeed are expected to
// be memoized by the caller (see indices.DefinitionIndex).
type DefinitionMap interface {
	TryGetRowID(id SymbolID) (tokens.RowID, bool)
}

// StaticDefinitionMap is a simple map-backed DefinitionMap, sufficient for
// tests and for the CLI demo harness.
type StaticDefinitionMap map[SymbolID]tokens.RowID

func (m StaticDefinitionMap) TryGetRowID(id SymbolID) (tokens.RowID, bool) {
	row, ok := m[id]
	return row, ok
}
