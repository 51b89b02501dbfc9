// Package change implements the delta writer's change driver (§4.2): the
// walk over the module's top-level types, dispatched by the change oracle's
// classification, that populates every definition-shaped index.
package change

import (
	"context"

	"deltawriter/internal/baseline"
	"deltawriter/internal/deltaerr"
	"deltawriter/internal/indices"
	"deltawriter/internal/module"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

// Indices bundles the definition-shaped indices the driver writes into. The
// orchestrator owns their lifetime; the driver only mutates them.
type Indices struct {
	TypeDefs      *indices.DefinitionIndex
	MethodDefs    *indices.DefinitionIndex
	FieldDefs     *indices.DefinitionIndex
	EventDefs     *indices.DefinitionIndex
	PropertyDefs  *indices.DefinitionIndex
	Params        *indices.SimpleIndex
	GenericParams *indices.SimpleIndex
	EventMap      *indices.MapIndex
	PropertyMap   *indices.MapIndex
	MethodImpls   *indices.MethodImplIndex
}

// MethodParamPair is one (method, parameter) pair added this delta,
// recorded in the emission order the change driver produced them — the
// order the EncLog parameter pass must reproduce.
type MethodParamPair struct {
	Method oracle.SymbolID
	Param  oracle.SymbolID
}

// Result is everything the driver accumulated besides the index mutations
// themselves: the ordering the EncLog parameter pass needs, and the owner
// lookups the EncLog structured Event/Field/Method/Property passes need to
// find each child's AddX token.
type Result struct {
	ParamPairs []MethodParamPair

	// FieldOwners/MethodOwners map a field or method's SymbolID to the row
	// id of its owning TypeDef.
	FieldOwners  map[oracle.SymbolID]tokens.RowID
	MethodOwners map[oracle.SymbolID]tokens.RowID

	// EventOwners/PropertyOwners map an event or property's SymbolID to the
	// row id of its owning EventMap/PropertyMap row.
	EventOwners    map[oracle.SymbolID]tokens.RowID
	PropertyOwners map[oracle.SymbolID]tokens.RowID
}

func newResult() *Result {
	return &Result{
		FieldOwners:    make(map[oracle.SymbolID]tokens.RowID),
		MethodOwners:   make(map[oracle.SymbolID]tokens.RowID),
		EventOwners:    make(map[oracle.SymbolID]tokens.RowID),
		PropertyOwners: make(map[oracle.SymbolID]tokens.RowID),
	}
}

// Driver walks a module's top-level types under the oracle's classification
// and populates Indices accordingly.
type Driver struct {
	Oracle  oracle.Oracle
	Indices Indices
	Module  *module.Module
}

// memberStatus is the outcome of addMemberIfNecessary.
type memberStatus int

const (
	statusSkipped memberStatus = iota
	statusAdded
	statusUpdated
)

// Run walks every top-level type the oracle reports as touched. ctx is
// polled between top-level types, the cooperative-cancellation safe point
// named in §5.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	res := newResult()
	for _, id := range d.Oracle.TopLevelTypes() {
		if err := ctx.Err(); err != nil {
			return nil, deltaerr.New(deltaerr.Cancelled, "change: cancelled before type %v", id)
		}
		t, ok := d.Module.Type(id)
		if !ok {
			return nil, deltaerr.Invariant("change: oracle named top-level type %v not present in module", id)
		}
		if err := d.visitType(t, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (d *Driver) visitType(t *module.TypeDef, res *Result) error {
	switch c := d.Oracle.Classify(t.ID); c {
	case oracle.Added:
		if _, err := d.Indices.TypeDefs.Add(t.ID); err != nil {
			return err
		}
		for _, gp := range t.ConsolidatedGenericParams() {
			if _, err := d.Indices.GenericParams.Add(gp.ID); err != nil {
				return err
			}
		}
	case oracle.Updated:
		if _, err := d.Indices.TypeDefs.AddUpdated(t.ID); err != nil {
			return err
		}
	case oracle.ContainsChanges:
		// Row untouched; only members (and nested types) are walked.
	case oracle.None:
		return nil
	default:
		return deltaerr.Invariant("change: unexpected change kind %d for type %v", c, t.ID)
	}

	typeRow, ok := d.Indices.TypeDefs.TryGet(t.ID)
	if !ok {
		return deltaerr.Invariant("change: type %v has no row after dispatch", t.ID)
	}

	for _, e := range t.Events {
		if _, has := d.Indices.EventMap.TryGet(typeRow); !has {
			if _, err := d.Indices.EventMap.EnsureRow(typeRow); err != nil {
				return err
			}
		}
		status, err := d.addMemberIfNecessary(d.Indices.EventDefs, e.ID)
		if err != nil {
			return err
		}
		if status != statusSkipped {
			mapRow, _ := d.Indices.EventMap.TryGet(typeRow)
			res.EventOwners[e.ID] = mapRow
		}
	}

	for _, f := range t.Fields {
		status, err := d.addMemberIfNecessary(d.Indices.FieldDefs, f.ID)
		if err != nil {
			return err
		}
		if status != statusSkipped {
			res.FieldOwners[f.ID] = typeRow
		}
	}

	for _, m := range t.Methods {
		status, err := d.addMemberIfNecessary(d.Indices.MethodDefs, m.ID)
		if err != nil {
			return err
		}
		if status == statusSkipped {
			continue
		}
		res.MethodOwners[m.ID] = typeRow
		if status != statusAdded {
			continue
		}
		for _, p := range m.EmittedParams() {
			if _, err := d.Indices.Params.Add(p.ID); err != nil {
				return err
			}
			res.ParamPairs = append(res.ParamPairs, MethodParamPair{Method: m.ID, Param: p.ID})
		}
		for _, gp := range m.GenericParams {
			if _, err := d.Indices.GenericParams.Add(gp.ID); err != nil {
				return err
			}
		}
	}

	for _, p := range t.Properties {
		if _, has := d.Indices.PropertyMap.TryGet(typeRow); !has {
			if _, err := d.Indices.PropertyMap.EnsureRow(typeRow); err != nil {
				return err
			}
		}
		status, err := d.addMemberIfNecessary(d.Indices.PropertyDefs, p.ID)
		if err != nil {
			return err
		}
		if status != statusSkipped {
			mapRow, _ := d.Indices.PropertyMap.TryGet(typeRow)
			res.PropertyOwners[p.ID] = mapRow
		}
	}

	for _, impl := range t.ExplicitImpls {
		methodRow, ok := d.Indices.MethodDefs.TryGet(impl.Method)
		if !ok {
			return deltaerr.Invariant("change: explicit impl on %v names unresolvable method %v", t.ID, impl.Method)
		}
		occ := d.Indices.MethodImpls.NextOccurrence(methodRow)
		key := baseline.MethodImplKey{MethodDefRow: methodRow, Occurrence: occ}
		if _, err := d.Indices.MethodImpls.Add(key); err != nil {
			return err
		}
	}

	for _, nt := range t.NestedTypes {
		if err := d.visitType(nt, res); err != nil {
			return err
		}
	}
	return nil
}

// addMemberIfNecessary dispatches a single member the same way visitType
// dispatches a type, except ContainsChanges never applies to a leaf member
// (only nested types recurse), so it collapses to statusSkipped alongside
// None per §4.2's addMemberIfNecessary definition.
func (d *Driver) addMemberIfNecessary(idx *indices.DefinitionIndex, id oracle.SymbolID) (memberStatus, error) {
	switch c := d.Oracle.Classify(id); c {
	case oracle.Added:
		if _, err := idx.Add(id); err != nil {
			return statusSkipped, err
		}
		return statusAdded, nil
	case oracle.Updated:
		if _, err := idx.AddUpdated(id); err != nil {
			return statusSkipped, err
		}
		return statusUpdated, nil
	case oracle.ContainsChanges, oracle.None:
		return statusSkipped, nil
	default:
		return statusSkipped, deltaerr.Invariant("change: unexpected change kind %d for %v", c, id)
	}
}
