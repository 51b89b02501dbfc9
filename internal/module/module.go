// Package module models the (out-of-scope) module builder's output in just
// enough detail for the delta writer's own components — the change driver,
// the reference visitor, and the local-signature serializer — to walk it.
// Parsing, binding, and IL lowering all happen upstream; this package only
// shapes their result the way the writer needs to consume it.
package module

import (
	"deltawriter/internal/names"
	"deltawriter/internal/oracle"
)

// GenericParam is a single generic parameter owned by a type or method.
type GenericParam struct {
	ID oracle.SymbolID
}

// ParamDef is one parameter of a method, including the pseudo-parameter at
// Sequence 0 that represents the return value.
type ParamDef struct {
	ID                  oracle.SymbolID
	Sequence            int
	HasCustomAttributes bool
}

// FieldDef, EventDef and PropertyDef carry nothing beyond their identity;
// the writer never inspects their shape, only whether the oracle says they
// changed.
type FieldDef struct{ ID oracle.SymbolID }
type EventDef struct{ ID oracle.SymbolID }
type PropertyDef struct{ ID oracle.SymbolID }

// ExplicitImpl is one explicit interface-method override owned by a type:
// Method is the implementing method (owned by the type), Interface is the
// interface method being implemented. Only Method's row matters for
// MethodImpl numbering; Interface and References exist for the reference
// visitor.
type ExplicitImpl struct {
	Method     oracle.SymbolID
	Interface  oracle.SymbolID
	References []Reference
}

// MethodDef is a method owned by a type. Body is nil for methods with no
// implementation to emit (abstract, extern, implicit default constructors
// with nothing to serialize).
type MethodDef struct {
	ID            oracle.SymbolID
	Params        []ParamDef
	GenericParams []GenericParam
	Body          *MethodBody

	// Implicit marks a compiler-synthesized declaration (e.g. a default
	// constructor) that never gets a MethodDebugInfo entry even when it has
	// a body.
	Implicit bool

	// RetainsSequencePoints is true when the lowered body still carries
	// sequence points the debugger can remap; methods that lost them (e.g.
	// their statements were fully optimized away) are excluded from the
	// orchestrator's changed-method export.
	RetainsSequencePoints bool
}

// EmittedParams returns the parameters the change driver adds rows for:
// every parameter except the return pseudo-parameter (Sequence 0) when it
// carries no custom attributes.
func (m *MethodDef) EmittedParams() []ParamDef {
	out := make([]ParamDef, 0, len(m.Params))
	for _, p := range m.Params {
		if p.Sequence == 0 && !p.HasCustomAttributes {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Local is one local variable slot in a method body.
type Local struct {
	// HasSlot is false for an unnamed temporary: signature only, no debug
	// identity carried across generations.
	HasSlot bool

	Kind         names.SynthesizedLocalKind
	Ordinal      int
	SyntaxOffset int
	Constraints  []string

	Type Reference

	// TypeReferences are the references (MemberRef/TypeSpec/etc.) the
	// local's type graph touches; only walked by the reference visitor when
	// CachedSignature is empty.
	TypeReferences []Reference

	// CachedSignature is the signature-blob byte range assigned in an
	// earlier generation, carried forward verbatim when non-empty.
	CachedSignature []byte
}

// MethodBody carries the reference graph the visitor walks and the locals
// the signature serializer emits. PreSerializedSignature, when non-empty,
// is a whole-body opaque local-signature blob: the reference visitor then
// skips the TypeReferences of Locals. The signature serializer does not
// read this field; it builds the blob from Locals either way.
type MethodBody struct {
	References             []Reference
	Locals                 []Local
	PreSerializedSignature []byte
}

// TypeDef is one type. NestedTypes lets ContainsChanges recurse the same
// way the change driver and reference visitor recurse into any container.
type TypeDef struct {
	ID                  oracle.SymbolID
	OuterGenericParams  []GenericParam
	OwnGenericParams    []GenericParam
	Events              []EventDef
	Fields              []FieldDef
	Methods             []MethodDef
	Properties          []PropertyDef
	ExplicitImpls       []ExplicitImpl
	NestedTypes         []*TypeDef
}

// ConsolidatedGenericParams returns every generic parameter T's rows need,
// outer parameters first, then T's own, per §4.2 step 2.
func (t *TypeDef) ConsolidatedGenericParams() []GenericParam {
	out := make([]GenericParam, 0, len(t.OuterGenericParams)+len(t.OwnGenericParams))
	out = append(out, t.OuterGenericParams...)
	out = append(out, t.OwnGenericParams...)
	return out
}

// Module is the flattened, indexed view of every top-level type and its
// transitive members, built once so the writer's components can resolve a
// SymbolID to its definition in O(1).
type Module struct {
	topLevel   []*TypeDef
	types      map[oracle.SymbolID]*TypeDef
	methods    map[oracle.SymbolID]*MethodDef
	fields     map[oracle.SymbolID]*FieldDef
	events     map[oracle.SymbolID]*EventDef
	properties map[oracle.SymbolID]*PropertyDef

	// parentType maps every non-top-level definition's SymbolID to its
	// direct owner's SymbolID: the owning TypeDef for methods, fields,
	// events, properties and nested types; the owning MethodDef for params
	// and method generic params.
	parentType map[oracle.SymbolID]oracle.SymbolID
}

// New indexes topLevel and its full transitive closure (including nested
// types) for lookup.
func New(topLevel []*TypeDef) *Module {
	m := &Module{
		topLevel:   topLevel,
		types:      make(map[oracle.SymbolID]*TypeDef),
		methods:    make(map[oracle.SymbolID]*MethodDef),
		fields:     make(map[oracle.SymbolID]*FieldDef),
		events:     make(map[oracle.SymbolID]*EventDef),
		properties: make(map[oracle.SymbolID]*PropertyDef),
		parentType: make(map[oracle.SymbolID]oracle.SymbolID),
	}
	for _, t := range topLevel {
		m.index(t)
	}
	return m
}

func (m *Module) index(t *TypeDef) {
	m.types[t.ID] = t
	for i := range t.Methods {
		mm := &t.Methods[i]
		m.methods[mm.ID] = mm
		m.parentType[mm.ID] = t.ID
		for _, p := range mm.Params {
			m.parentType[p.ID] = mm.ID
		}
		for _, gp := range mm.GenericParams {
			m.parentType[gp.ID] = mm.ID
		}
	}
	for i := range t.Fields {
		m.fields[t.Fields[i].ID] = &t.Fields[i]
		m.parentType[t.Fields[i].ID] = t.ID
	}
	for i := range t.Events {
		m.events[t.Events[i].ID] = &t.Events[i]
		m.parentType[t.Events[i].ID] = t.ID
	}
	for i := range t.Properties {
		m.properties[t.Properties[i].ID] = &t.Properties[i]
		m.parentType[t.Properties[i].ID] = t.ID
	}
	for _, nt := range t.NestedTypes {
		m.parentType[nt.ID] = t.ID
		m.index(nt)
	}
}

// TopLevelTypes returns the module's top-level type definitions in
// declaration order.
func (m *Module) TopLevelTypes() []*TypeDef { return m.topLevel }

// Type, Method, Field, Event and Property resolve a SymbolID within this
// module; ok is false for a symbol the module never declared (an external
// reference, resolved instead through the definition map or a reference
// index).
func (m *Module) Type(id oracle.SymbolID) (*TypeDef, bool)         { t, ok := m.types[id]; return t, ok }
func (m *Module) Method(id oracle.SymbolID) (*MethodDef, bool)     { v, ok := m.methods[id]; return v, ok }
func (m *Module) Field(id oracle.SymbolID) (*FieldDef, bool)       { v, ok := m.fields[id]; return v, ok }
func (m *Module) Event(id oracle.SymbolID) (*EventDef, bool)       { v, ok := m.events[id]; return v, ok }
func (m *Module) Property(id oracle.SymbolID) (*PropertyDef, bool) { v, ok := m.properties[id]; return v, ok }

// OwningType returns the TypeDef that directly owns id (a member, param, or
// generic param SymbolID).
func (m *Module) OwningType(id oracle.SymbolID) (oracle.SymbolID, bool) {
	owner, ok := m.parentType[id]
	if !ok {
		return oracle.SymbolID{}, false
	}
	if _, isType := m.types[owner]; isType {
		return owner, true
	}
	// owner is itself a method (a param or a method generic param); climb
	// one more level to the owning type.
	return m.OwningType(owner)
}
