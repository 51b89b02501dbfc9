package oracle

// StaticOracle is a map-backed Oracle, sufficient for tests and for the
// CLI's fixture-driven demo harness (real change detection is out of
// scope for this repository per §1's "consumed" boundary).
type StaticOracle struct {
	Classifications map[SymbolID]ChangeKind
	Added           map[SymbolID]bool
	TopLevel        []SymbolID
}

func NewStaticOracle() *StaticOracle {
	return &StaticOracle{
		Classifications: make(map[SymbolID]ChangeKind),
		Added:           make(map[SymbolID]bool),
	}
}

func (o *StaticOracle) Classify(id SymbolID) ChangeKind {
	return o.Classifications[id]
}

func (o *StaticOracle) IsAdded(id SymbolID) bool {
	return o.Added[id]
}

func (o *StaticOracle) TopLevelTypes() []SymbolID {
	return o.TopLevel
}
