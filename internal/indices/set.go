package indices

import (
	"deltawriter/internal/baseline"
	"deltawriter/internal/module"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

// Set is every index the delta writer needs for one generation, seeded
// from the baseline per §4.1's pipeline step 1 ("Index tables"). The
// orchestrator constructs exactly one Set per delta and hands slices of it
// to the change driver, the reference visitor, and the local-signature
// serializer.
type Set struct {
	TypeDefs     *DefinitionIndex
	MethodDefs   *DefinitionIndex
	FieldDefs    *DefinitionIndex
	EventDefs    *DefinitionIndex
	PropertyDefs *DefinitionIndex

	Params        *SimpleIndex
	GenericParams *SimpleIndex

	EventMap    *MapIndex
	PropertyMap *MapIndex
	MethodImpls *MethodImplIndex

	AssemblyRef   *ReferenceIndex[module.AssemblyRefValue]
	ModuleRef     *ReferenceIndex[module.ModuleRefValue]
	TypeRef       *ReferenceIndex[module.TypeRefValue]
	TypeSpec      *ReferenceIndex[module.TypeSpecValue]
	MemberRef     *ReferenceIndex[module.MemberRefValue]
	MethodSpec    *ReferenceIndex[module.MethodSpecValue]
	StandAloneSig *ReferenceIndex[string]
}

// NewSet seeds every index from b's table sizes and prior additions, and
// defMap for definitions older than b's own additions.
func NewSet(b *baseline.Baseline, defMap oracle.DefinitionMap) *Set {
	return &Set{
		TypeDefs:     NewDefinitionIndex(tokens.TypeDef, b.TableSize(tokens.TypeDef), b.AdditionsFor(tokens.TypeDef), defMap),
		MethodDefs:   NewDefinitionIndex(tokens.MethodDef, b.TableSize(tokens.MethodDef), b.AdditionsFor(tokens.MethodDef), defMap),
		FieldDefs:    NewDefinitionIndex(tokens.Field, b.TableSize(tokens.Field), b.AdditionsFor(tokens.Field), defMap),
		EventDefs:    NewDefinitionIndex(tokens.Event, b.TableSize(tokens.Event), b.AdditionsFor(tokens.Event), defMap),
		PropertyDefs: NewDefinitionIndex(tokens.Property, b.TableSize(tokens.Property), b.AdditionsFor(tokens.Property), defMap),

		Params:        NewSimpleIndex(tokens.Param, b.TableSize(tokens.Param)),
		GenericParams: NewSimpleIndex(tokens.GenericParam, b.TableSize(tokens.GenericParam)),

		EventMap:    NewMapIndex(tokens.EventMap, b.TableSize(tokens.EventMap), b.TypeToEventMap),
		PropertyMap: NewMapIndex(tokens.PropertyMap, b.TableSize(tokens.PropertyMap), b.TypeToPropertyMap),
		MethodImpls: NewMethodImplIndex(b.TableSize(tokens.MethodImpl), b.MethodImpls),

		AssemblyRef:   NewReferenceIndex[module.AssemblyRefValue](tokens.AssemblyRef, b.TableSize(tokens.AssemblyRef)),
		ModuleRef:     NewReferenceIndex[module.ModuleRefValue](tokens.ModuleRef, b.TableSize(tokens.ModuleRef)),
		TypeRef:       NewReferenceIndex[module.TypeRefValue](tokens.TypeRef, b.TableSize(tokens.TypeRef)),
		TypeSpec:      NewReferenceIndex[module.TypeSpecValue](tokens.TypeSpec, b.TableSize(tokens.TypeSpec)),
		MemberRef:     NewReferenceIndex[module.MemberRefValue](tokens.MemberRef, b.TableSize(tokens.MemberRef)),
		MethodSpec:    NewReferenceIndex[module.MethodSpecValue](tokens.MethodSpec, b.TableSize(tokens.MethodSpec)),
		StandAloneSig: NewReferenceIndex[string](tokens.StandAloneSig, b.TableSize(tokens.StandAloneSig)),
	}
}

// FreezeReferences freezes the six reference indices; called after the
// reference visitor completes, before local-signature serialization reads
// StandAloneSig (§5: "reference indices must be frozen before EncMap/EncLog
// emission").
func (s *Set) FreezeReferences() {
	s.AssemblyRef.Freeze()
	s.ModuleRef.Freeze()
	s.TypeRef.Freeze()
	s.TypeSpec.Freeze()
	s.MemberRef.Freeze()
	s.MethodSpec.Freeze()
}

// FreezeAll freezes every remaining index, called once the local-signature
// pass (and therefore StandAloneSig) has finished.
func (s *Set) FreezeAll() {
	s.TypeDefs.Freeze()
	s.MethodDefs.Freeze()
	s.FieldDefs.Freeze()
	s.EventDefs.Freeze()
	s.PropertyDefs.Freeze()
	s.Params.Freeze()
	s.GenericParams.Freeze()
	s.EventMap.Freeze()
	s.PropertyMap.Freeze()
	s.MethodImpls.Freeze()
	s.StandAloneSig.Freeze()
}

// DeltaSizes reports each table's row-count contribution this delta, the
// input EmitBaseline merging needs for tableEntriesAdded (§4.6). Definition
// tables report AddedCount, never len(Rows()): pure updates of pre-existing
// rows do not grow a table.
func (s *Set) DeltaSizes() map[tokens.Table]int {
	return map[tokens.Table]int{
		tokens.TypeDef:      s.TypeDefs.AddedCount(),
		tokens.MethodDef:    s.MethodDefs.AddedCount(),
		tokens.Field:        s.FieldDefs.AddedCount(),
		tokens.Event:        s.EventDefs.AddedCount(),
		tokens.Property:     s.PropertyDefs.AddedCount(),
		tokens.Param:        s.Params.Count(),
		tokens.GenericParam: s.GenericParams.Count(),
		tokens.EventMap:     s.EventMap.AddedCount(),
		tokens.PropertyMap:  s.PropertyMap.AddedCount(),
		tokens.MethodImpl:   s.MethodImpls.AddedCount(),

		tokens.AssemblyRef:   s.AssemblyRef.Count(),
		tokens.ModuleRef:     s.ModuleRef.Count(),
		tokens.TypeRef:       s.TypeRef.Count(),
		tokens.TypeSpec:      s.TypeSpec.Count(),
		tokens.MemberRef:     s.MemberRef.Count(),
		tokens.MethodSpec:    s.MethodSpec.Count(),
		tokens.StandAloneSig: s.StandAloneSig.Count(),
	}
}

// Additions collects the definition tables' symbol->row maps for the
// baseline merge (§4.6).
func (s *Set) Additions() map[tokens.Table]map[oracle.SymbolID]tokens.RowID {
	return map[tokens.Table]map[oracle.SymbolID]tokens.RowID{
		tokens.TypeDef:   s.TypeDefs.Added(),
		tokens.MethodDef: s.MethodDefs.Added(),
		tokens.Field:     s.FieldDefs.Added(),
		tokens.Event:     s.EventDefs.Added(),
		tokens.Property:  s.PropertyDefs.Added(),
	}
}

// referenceRange is a convenience so callers building enc.Range values
// don't need to know each ReferenceIndex's internal offset arithmetic.
func referenceRange[K comparable](idx *ReferenceIndex[K]) (previousSize, deltaSize int) {
	return int(idx.FirstRowID()) - 1, idx.Count()
}

// AssemblyRefRange, ModuleRefRange, TypeRefRange, TypeSpecRange,
// MemberRefRange, MethodSpecRange and StandAloneSigRange expose the
// (previousSize, deltaSize) pair for enc.Range construction without
// leaking ReferenceIndex's generic type parameter into package enc.
func (s *Set) AssemblyRefRange() (int, int)   { return referenceRange(s.AssemblyRef) }
func (s *Set) ModuleRefRange() (int, int)     { return referenceRange(s.ModuleRef) }
func (s *Set) TypeRefRange() (int, int)       { return referenceRange(s.TypeRef) }
func (s *Set) TypeSpecRange() (int, int)      { return referenceRange(s.TypeSpec) }
func (s *Set) MemberRefRange() (int, int)     { return referenceRange(s.MemberRef) }
func (s *Set) MethodSpecRange() (int, int)    { return referenceRange(s.MethodSpec) }
func (s *Set) StandAloneSigRange() (int, int) { return referenceRange(s.StandAloneSig) }
