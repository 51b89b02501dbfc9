// Package enc builds the EncLog and EncMap auxiliary tables (§4.5): the
// ordered edit stream and the sorted token set a debugger consumes to
// stream-apply a delta.
package enc

import (
	"sort"

	"deltawriter/internal/change"
	"deltawriter/internal/deltaerr"
	"deltawriter/internal/indices"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

// FuncCode is the EncLog row's edit operation.
type FuncCode int

const (
	Default FuncCode = iota
	AddField
	AddMethod
	AddEvent
	AddProperty
	AddParameter
)

func (f FuncCode) String() string {
	switch f {
	case Default:
		return "Default"
	case AddField:
		return "AddField"
	case AddMethod:
		return "AddMethod"
	case AddEvent:
		return "AddEvent"
	case AddProperty:
		return "AddProperty"
	case AddParameter:
		return "AddParameter"
	default:
		return "Unknown"
	}
}

// LogRow is one EncLog entry.
type LogRow struct {
	Token tokens.Token
	Func  FuncCode
}

// Range describes a table's contiguous contribution this delta: rows
// [PreviousSize+1, PreviousSize+DeltaSize].
type Range struct {
	PreviousSize int
	DeltaSize    int
}

func (r Range) rowIDs() []tokens.RowID {
	out := make([]tokens.RowID, r.DeltaSize)
	for i := 0; i < r.DeltaSize; i++ {
		out[i] = tokens.RowID(r.PreviousSize + 1 + i)
	}
	return out
}

// LinearRanges bundles the tables emitted as flat [previousSize+1,
// previousSize+deltaSize] Default-row ranges, in the canonical order §4.5
// names after the parameter pass. The module model in this repository does
// not represent Constant/CustomAttribute/DeclSecurity/ClassLayout/
// FieldLayout/MethodSemantics/ImplMap/FieldRva/InterfaceImpl/
// GenericParamConstraint rows, so those Ranges are always zero-width unless
// a caller supplies real counts; MethodImpl, NestedClass and GenericParam
// are always computed from the indices.
type LinearRanges struct {
	Constant               Range
	CustomAttribute        Range
	DeclSecurity           Range
	ClassLayout            Range
	FieldLayout            Range
	MethodSemantics        Range
	MethodImpl             Range
	ImplMap                Range
	FieldRva               Range
	NestedClass            Range
	GenericParam           Range
	InterfaceImpl          Range
	GenericParamConstraint Range
}

func (lr LinearRanges) ordered() []struct {
	table tokens.Table
	r     Range
} {
	return []struct {
		table tokens.Table
		r     Range
	}{
		{tokens.Constant, lr.Constant},
		{tokens.CustomAttribute, lr.CustomAttribute},
		{tokens.DeclSecurity, lr.DeclSecurity},
		{tokens.ClassLayout, lr.ClassLayout},
		{tokens.FieldLayout, lr.FieldLayout},
		{tokens.MethodSemantics, lr.MethodSemantics},
		{tokens.MethodImpl, lr.MethodImpl},
		{tokens.ImplMap, lr.ImplMap},
		{tokens.FieldRva, lr.FieldRva},
		{tokens.NestedClass, lr.NestedClass},
		{tokens.GenericParam, lr.GenericParam},
		{tokens.InterfaceImpl, lr.InterfaceImpl},
		{tokens.GenericParamConstraint, lr.GenericParamConstraint},
	}
}

// Inputs bundles everything BuildLog and BuildMap read. The seven
// reference-shaped Ranges (AssemblyRef..StandAloneSig) come first in the
// canonical EncLog order, ahead of the definition tables.
type Inputs struct {
	AssemblyRef   Range
	ModuleRef     Range
	MemberRef     Range
	MethodSpec    Range
	TypeRef       Range
	TypeSpec      Range
	StandAloneSig Range

	TypeDefs     *indices.DefinitionIndex
	EventMapRows []tokens.RowID
	PropMapRows  []tokens.RowID
	EventDefs    *indices.DefinitionIndex
	FieldDefs    *indices.DefinitionIndex
	MethodDefs   *indices.DefinitionIndex
	PropertyDefs *indices.DefinitionIndex

	EventOwners    map[oracle.SymbolID]tokens.RowID
	FieldOwners    map[oracle.SymbolID]tokens.RowID
	MethodOwners   map[oracle.SymbolID]tokens.RowID
	PropertyOwners map[oracle.SymbolID]tokens.RowID

	Params     *indices.SimpleIndex
	ParamPairs []change.MethodParamPair

	Linear LinearRanges
}

// BuildLog assembles the EncLog in the canonical, dependency-respecting
// order defined by §4.5.
func BuildLog(in Inputs) ([]LogRow, error) {
	var rows []LogRow

	appendRange := func(table tokens.Table, r Range) {
		for _, row := range r.rowIDs() {
			rows = append(rows, LogRow{Token: tokens.Make(table, row), Func: Default})
		}
	}

	appendRange(tokens.AssemblyRef, in.AssemblyRef)
	appendRange(tokens.ModuleRef, in.ModuleRef)
	appendRange(tokens.MemberRef, in.MemberRef)
	appendRange(tokens.MethodSpec, in.MethodSpec)
	appendRange(tokens.TypeRef, in.TypeRef)
	appendRange(tokens.TypeSpec, in.TypeSpec)
	appendRange(tokens.StandAloneSig, in.StandAloneSig)

	for _, row := range in.TypeDefs.Rows() {
		rows = append(rows, LogRow{Token: tokens.Make(tokens.TypeDef, row.RowID), Func: Default})
	}

	for _, row := range in.EventMapRows {
		rows = append(rows, LogRow{Token: tokens.Make(tokens.EventMap, row), Func: Default})
	}
	for _, row := range in.PropMapRows {
		rows = append(rows, LogRow{Token: tokens.Make(tokens.PropertyMap, row), Func: Default})
	}

	appendStructured := func(idx *indices.DefinitionIndex, table tokens.Table, owners map[oracle.SymbolID]tokens.RowID, ownerTable tokens.Table, addFunc FuncCode) error {
		for _, row := range idx.Rows() {
			id, ok := idx.Get(row.RowID)
			if !ok {
				return deltaerr.Invariant("enc: %s row %d has no reverse mapping", table, row.RowID)
			}
			if row.Added {
				ownerRow, ok := owners[id]
				if !ok {
					return deltaerr.Invariant("enc: %s %v has no recorded owner", table, id)
				}
				rows = append(rows, LogRow{Token: tokens.Make(ownerTable, ownerRow), Func: addFunc})
			}
			rows = append(rows, LogRow{Token: tokens.Make(table, row.RowID), Func: Default})
		}
		return nil
	}

	if err := appendStructured(in.EventDefs, tokens.Event, in.EventOwners, tokens.EventMap, AddEvent); err != nil {
		return nil, err
	}
	if err := appendStructured(in.FieldDefs, tokens.Field, in.FieldOwners, tokens.TypeDef, AddField); err != nil {
		return nil, err
	}
	if err := appendStructured(in.MethodDefs, tokens.MethodDef, in.MethodOwners, tokens.TypeDef, AddMethod); err != nil {
		return nil, err
	}
	if err := appendStructured(in.PropertyDefs, tokens.Property, in.PropertyOwners, tokens.PropertyMap, AddProperty); err != nil {
		return nil, err
	}

	for _, pair := range in.ParamPairs {
		methodRow, ok := in.MethodDefs.TryGet(pair.Method)
		if !ok {
			return nil, deltaerr.Invariant("enc: parameter pair names unresolvable method %v", pair.Method)
		}
		paramRow, ok := in.Params.TryGet(pair.Param)
		if !ok {
			return nil, deltaerr.Invariant("enc: parameter pair names unresolvable param %v", pair.Param)
		}
		rows = append(rows, LogRow{Token: tokens.Make(tokens.MethodDef, methodRow), Func: AddParameter})
		rows = append(rows, LogRow{Token: tokens.Make(tokens.Param, paramRow), Func: Default})
	}

	for _, lr := range in.Linear.ordered() {
		appendRange(lr.table, lr.r)
	}

	return rows, nil
}

// BuildMap assembles the sorted, duplicate-free EncMap.
func BuildMap(in Inputs) ([]tokens.Token, error) {
	seen := make(map[tokens.Token]bool)
	var toks []tokens.Token

	add := func(t tokens.Token) error {
		if seen[t] {
			return deltaerr.Invariant("encmap: duplicate token %#08x", uint32(t))
		}
		seen[t] = true
		toks = append(toks, t)
		return nil
	}
	addRange := func(table tokens.Table, r Range) error {
		for _, row := range r.rowIDs() {
			if err := add(tokens.Make(table, row)); err != nil {
				return err
			}
		}
		return nil
	}
	addRows := func(table tokens.Table, idx *indices.DefinitionIndex) error {
		for _, row := range idx.Rows() {
			if err := add(tokens.Make(table, row.RowID)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, step := range []struct {
		table tokens.Table
		r     Range
	}{
		{tokens.AssemblyRef, in.AssemblyRef},
		{tokens.ModuleRef, in.ModuleRef},
		{tokens.MemberRef, in.MemberRef},
		{tokens.MethodSpec, in.MethodSpec},
		{tokens.TypeRef, in.TypeRef},
		{tokens.TypeSpec, in.TypeSpec},
		{tokens.StandAloneSig, in.StandAloneSig},
	} {
		if err := addRange(step.table, step.r); err != nil {
			return nil, err
		}
	}
	if err := addRange(tokens.Param, Range{PreviousSize: int(in.Params.FirstRowID()) - 1, DeltaSize: in.Params.Count()}); err != nil {
		return nil, err
	}
	for _, lr := range in.Linear.ordered() {
		if err := addRange(lr.table, lr.r); err != nil {
			return nil, err
		}
	}
	for _, row := range in.EventMapRows {
		if err := add(tokens.Make(tokens.EventMap, row)); err != nil {
			return nil, err
		}
	}
	for _, row := range in.PropMapRows {
		if err := add(tokens.Make(tokens.PropertyMap, row)); err != nil {
			return nil, err
		}
	}

	for _, step := range []struct {
		table tokens.Table
		idx   *indices.DefinitionIndex
	}{
		{tokens.TypeDef, in.TypeDefs},
		{tokens.Event, in.EventDefs},
		{tokens.Field, in.FieldDefs},
		{tokens.MethodDef, in.MethodDefs},
		{tokens.Property, in.PropertyDefs},
	} {
		if err := addRows(step.table, step.idx); err != nil {
			return nil, err
		}
	}

	sort.Slice(toks, func(i, j int) bool { return toks[i] < toks[j] })
	return toks, nil
}
