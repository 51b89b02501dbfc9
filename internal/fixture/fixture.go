// Package fixture loads a JSON change-set document into the concrete
// collaborators internal/emit.Run needs: a module.Module, an
// oracle.StaticOracle, and an oracle.StaticDefinitionMap. It stands in for
// the module builder and change oracle the real system would supply
// (§6 "Consumed"), the way the teacher's cmd/class-collector reads a source
// tree instead of taking pre-built symbol tables.
package fixture

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"deltawriter/internal/module"
	"deltawriter/internal/names"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

type doc struct {
	Types         []typeDoc                  `json:"types"`
	DefinitionMap map[string]map[string]int  `json:"definitionMap"`
}

type refDoc struct {
	Kind                string `json:"kind"`
	AssemblyName        string `json:"assemblyName,omitempty"`
	AssemblyVersion     string `json:"assemblyVersion,omitempty"`
	AssemblyCulture     string `json:"assemblyCulture,omitempty"`
	AssemblyPublicKey   string `json:"assemblyPublicKeyToken,omitempty"`
	ModuleName          string `json:"moduleName,omitempty"`
	ResolutionScope     string `json:"resolutionScope,omitempty"`
	Namespace           string `json:"namespace,omitempty"`
	Name                string `json:"name,omitempty"`
	Blob                string `json:"blob,omitempty"`
	ParentKey           string `json:"parentKey,omitempty"`
	Signature           string `json:"signature,omitempty"`
	MethodKey           string `json:"methodKey,omitempty"`
	Instantiation       string `json:"instantiation,omitempty"`
	HasTarget           bool   `json:"hasTarget,omitempty"`
	Target              string `json:"target,omitempty"`
	TargetKind          string `json:"targetKind,omitempty"`
	SimpleName          string `json:"simpleName,omitempty"`
	AssemblyDisplayName string `json:"assemblyDisplayName,omitempty"`
}

type localDoc struct {
	HasSlot         bool     `json:"hasSlot"`
	Kind            string   `json:"kind,omitempty"`
	Ordinal         int      `json:"ordinal,omitempty"`
	SyntaxOffset    int      `json:"syntaxOffset,omitempty"`
	Constraints     []string `json:"constraints,omitempty"`
	TypeSignatureHex string  `json:"typeSignatureHex,omitempty"`
	CachedSignatureHex string `json:"cachedSignatureHex,omitempty"`
	TypeReferences  []refDoc `json:"typeReferences,omitempty"`
}

type bodyDoc struct {
	References             []refDoc   `json:"references,omitempty"`
	Locals                 []localDoc `json:"locals,omitempty"`
	PreSerializedSignatureHex string   `json:"preSerializedSignatureHex,omitempty"`
}

type paramDoc struct {
	ID                  string `json:"id"`
	Sequence            int    `json:"sequence"`
	HasCustomAttributes bool   `json:"hasCustomAttributes,omitempty"`
}

type methodDoc struct {
	ID                    string     `json:"id"`
	Change                string     `json:"change"`
	Implicit              bool       `json:"implicit,omitempty"`
	RetainsSequencePoints bool       `json:"retainsSequencePoints,omitempty"`
	GenericParams         []string   `json:"genericParams,omitempty"`
	Params                []paramDoc `json:"params,omitempty"`
	Body                  *bodyDoc   `json:"body,omitempty"`
}

type memberDoc struct {
	ID     string `json:"id"`
	Change string `json:"change"`
}

type explicitImplDoc struct {
	Method     string   `json:"method"`
	Interface  string   `json:"interface"`
	References []refDoc `json:"references,omitempty"`
}

type typeDoc struct {
	ID                 string            `json:"id"`
	Change             string            `json:"change"`
	OuterGenericParams []string          `json:"outerGenericParams,omitempty"`
	OwnGenericParams   []string          `json:"ownGenericParams,omitempty"`
	Events             []memberDoc       `json:"events,omitempty"`
	Fields             []memberDoc       `json:"fields,omitempty"`
	Properties         []memberDoc       `json:"properties,omitempty"`
	Methods            []methodDoc       `json:"methods,omitempty"`
	ExplicitImpls      []explicitImplDoc `json:"explicitImpls,omitempty"`
	NestedTypes        []typeDoc         `json:"nestedTypes,omitempty"`
}

// Result bundles everything Load produces.
type Result struct {
	Module *module.Module
	Oracle *oracle.StaticOracle
	DefMap oracle.StaticDefinitionMap
	Types  *StubTypeSerializer
}

// StubTypeSerializer renders a local's type from the pre-encoded bytes the
// fixture already carries on the Reference's TypeSpec.Blob, standing in for
// the general signature serializer (out of scope per §6: a fixture supplies
// already-encoded type bytes rather than a type the writer could encode
// itself).
type StubTypeSerializer struct{}

func (StubTypeSerializer) SerializeLocalType(t module.Reference) ([]byte, error) {
	return []byte(t.TypeSpec.Blob), nil
}

// Load reads path and builds the module/oracle/definition-map trio.
func Load(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	var d doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("fixture: decode %s: %w", path, err)
	}

	o := oracle.NewStaticOracle()
	defMap := make(oracle.StaticDefinitionMap)
	for kindName, ids := range d.DefinitionMap {
		kind, err := parseSymbolKind(kindName)
		if err != nil {
			return nil, err
		}
		for key, row := range ids {
			defMap[oracle.SymbolID{Kind: kind, Key: key}] = tokens.RowID(row)
		}
	}

	types := make([]*module.TypeDef, 0, len(d.Types))
	for _, td := range d.Types {
		t, err := buildType(td, o)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		o.TopLevel = append(o.TopLevel, t.ID)
	}

	return &Result{
		Module: module.New(types),
		Oracle: o,
		DefMap: defMap,
		Types:  &StubTypeSerializer{},
	}, nil
}

func parseSymbolKind(name string) (oracle.SymbolKind, error) {
	switch name {
	case "type":
		return oracle.TypeSymbol, nil
	case "method":
		return oracle.MethodSymbol, nil
	case "field":
		return oracle.FieldSymbol, nil
	case "event":
		return oracle.EventSymbol, nil
	case "property":
		return oracle.PropertySymbol, nil
	default:
		return 0, fmt.Errorf("fixture: unknown definitionMap kind %q", name)
	}
}

func changeKind(s string) (oracle.ChangeKind, error) {
	switch s {
	case "", "None":
		return oracle.None, nil
	case "Added":
		return oracle.Added, nil
	case "Updated":
		return oracle.Updated, nil
	case "ContainsChanges":
		return oracle.ContainsChanges, nil
	default:
		return 0, fmt.Errorf("fixture: unknown change kind %q", s)
	}
}

func classify(o *oracle.StaticOracle, id oracle.SymbolID, s string) error {
	ck, err := changeKind(s)
	if err != nil {
		return err
	}
	o.Classifications[id] = ck
	if ck == oracle.Added {
		o.Added[id] = true
	}
	return nil
}

func buildType(td typeDoc, o *oracle.StaticOracle) (*module.TypeDef, error) {
	id := oracle.SymbolID{Kind: oracle.TypeSymbol, Key: td.ID}
	if err := classify(o, id, td.Change); err != nil {
		return nil, err
	}

	t := &module.TypeDef{ID: id}
	for _, g := range td.OuterGenericParams {
		t.OuterGenericParams = append(t.OuterGenericParams, module.GenericParam{ID: oracle.SymbolID{Kind: oracle.GenericParamSymbol, Key: g}})
	}
	for _, g := range td.OwnGenericParams {
		t.OwnGenericParams = append(t.OwnGenericParams, module.GenericParam{ID: oracle.SymbolID{Kind: oracle.GenericParamSymbol, Key: g}})
	}

	for _, e := range td.Events {
		eid := oracle.SymbolID{Kind: oracle.EventSymbol, Key: e.ID}
		if err := classify(o, eid, e.Change); err != nil {
			return nil, err
		}
		t.Events = append(t.Events, module.EventDef{ID: eid})
	}
	for _, f := range td.Fields {
		fid := oracle.SymbolID{Kind: oracle.FieldSymbol, Key: f.ID}
		if err := classify(o, fid, f.Change); err != nil {
			return nil, err
		}
		t.Fields = append(t.Fields, module.FieldDef{ID: fid})
	}
	for _, p := range td.Properties {
		pid := oracle.SymbolID{Kind: oracle.PropertySymbol, Key: p.ID}
		if err := classify(o, pid, p.Change); err != nil {
			return nil, err
		}
		t.Properties = append(t.Properties, module.PropertyDef{ID: pid})
	}

	for _, m := range td.Methods {
		md, err := buildMethod(m, o)
		if err != nil {
			return nil, err
		}
		t.Methods = append(t.Methods, md)
	}

	for _, ei := range td.ExplicitImpls {
		refs, err := buildRefs(ei.References)
		if err != nil {
			return nil, err
		}
		t.ExplicitImpls = append(t.ExplicitImpls, module.ExplicitImpl{
			Method:     oracle.SymbolID{Kind: oracle.MethodSymbol, Key: ei.Method},
			Interface:  oracle.SymbolID{Kind: oracle.MethodSymbol, Key: ei.Interface},
			References: refs,
		})
	}

	for _, nt := range td.NestedTypes {
		child, err := buildType(nt, o)
		if err != nil {
			return nil, err
		}
		t.NestedTypes = append(t.NestedTypes, child)
	}

	return t, nil
}

func buildMethod(m methodDoc, o *oracle.StaticOracle) (module.MethodDef, error) {
	id := oracle.SymbolID{Kind: oracle.MethodSymbol, Key: m.ID}
	if err := classify(o, id, m.Change); err != nil {
		return module.MethodDef{}, err
	}

	md := module.MethodDef{
		ID:                    id,
		Implicit:              m.Implicit,
		RetainsSequencePoints: m.RetainsSequencePoints,
	}
	for _, g := range m.GenericParams {
		md.GenericParams = append(md.GenericParams, module.GenericParam{ID: oracle.SymbolID{Kind: oracle.GenericParamSymbol, Key: g}})
	}
	for _, p := range m.Params {
		md.Params = append(md.Params, module.ParamDef{
			ID:                  oracle.SymbolID{Kind: oracle.ParamSymbol, Key: p.ID},
			Sequence:            p.Sequence,
			HasCustomAttributes: p.HasCustomAttributes,
		})
	}
	if m.Body != nil {
		body, err := buildBody(*m.Body)
		if err != nil {
			return module.MethodDef{}, err
		}
		md.Body = body
	}
	return md, nil
}

func buildBody(b bodyDoc) (*module.MethodBody, error) {
	refs, err := buildRefs(b.References)
	if err != nil {
		return nil, err
	}
	body := &module.MethodBody{References: refs}
	if b.PreSerializedSignatureHex != "" {
		raw, err := hex.DecodeString(b.PreSerializedSignatureHex)
		if err != nil {
			return nil, fmt.Errorf("fixture: bad preSerializedSignatureHex: %w", err)
		}
		body.PreSerializedSignature = raw
	}
	for _, l := range b.Locals {
		local, err := buildLocal(l)
		if err != nil {
			return nil, err
		}
		body.Locals = append(body.Locals, local)
	}
	return body, nil
}

func buildLocal(l localDoc) (module.Local, error) {
	local := module.Local{
		HasSlot:      l.HasSlot,
		Ordinal:      l.Ordinal,
		SyntaxOffset: l.SyntaxOffset,
		Constraints:  l.Constraints,
	}
	if l.Kind != "" {
		kind, ok := parseLocalKind(l.Kind)
		if !ok {
			return module.Local{}, fmt.Errorf("fixture: unknown local kind %q", l.Kind)
		}
		local.Kind = kind
	}
	if l.CachedSignatureHex != "" {
		raw, err := hex.DecodeString(l.CachedSignatureHex)
		if err != nil {
			return module.Local{}, fmt.Errorf("fixture: bad cachedSignatureHex: %w", err)
		}
		local.CachedSignature = raw
	}
	if l.TypeSignatureHex != "" {
		raw, err := hex.DecodeString(l.TypeSignatureHex)
		if err != nil {
			return module.Local{}, fmt.Errorf("fixture: bad typeSignatureHex: %w", err)
		}
		local.Type = module.Reference{Kind: module.RefTypeSpec, TypeSpec: module.TypeSpecValue{Blob: string(raw)}}
	}
	refs, err := buildRefs(l.TypeReferences)
	if err != nil {
		return module.Local{}, err
	}
	local.TypeReferences = refs
	return local, nil
}

func buildRefs(docs []refDoc) ([]module.Reference, error) {
	out := make([]module.Reference, 0, len(docs))
	for _, d := range docs {
		r, err := buildRef(d)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func buildRef(d refDoc) (module.Reference, error) {
	r := module.Reference{
		HasTarget:           d.HasTarget,
		SimpleName:          d.SimpleName,
		AssemblyDisplayName: d.AssemblyDisplayName,
	}
	if d.HasTarget {
		kind := oracle.MethodSymbol
		if d.TargetKind != "" {
			k, err := parseSymbolKind(d.TargetKind)
			if err != nil {
				return module.Reference{}, err
			}
			kind = k
		} else if d.Kind == "type" {
			kind = oracle.TypeSymbol
		}
		r.Target = oracle.SymbolID{Kind: kind, Key: d.Target}
	}
	switch d.Kind {
	case "assembly":
		r.Kind = module.RefAssembly
		r.Assembly = module.AssemblyRefValue{Name: d.AssemblyName, Version: d.AssemblyVersion, Culture: d.AssemblyCulture, PublicKeyToken: d.AssemblyPublicKey}
	case "module":
		r.Kind = module.RefModule
		r.Module = module.ModuleRefValue{Name: d.ModuleName}
	case "type":
		r.Kind = module.RefType
		r.Type = module.TypeRefValue{ResolutionScope: d.ResolutionScope, Namespace: d.Namespace, Name: d.Name}
	case "typespec":
		r.Kind = module.RefTypeSpec
		r.TypeSpec = module.TypeSpecValue{Blob: d.Blob}
	case "member":
		r.Kind = module.RefMember
		r.Member = module.MemberRefValue{ParentKey: d.ParentKey, Name: d.Name, Signature: d.Signature}
	case "methodspec":
		r.Kind = module.RefMethodSpec
		r.MethodSpec = module.MethodSpecValue{MethodKey: d.MethodKey, Instantiation: d.Instantiation}
	default:
		return module.Reference{}, fmt.Errorf("fixture: unknown reference kind %q", d.Kind)
	}
	return r, nil
}

func parseLocalKind(s string) (names.SynthesizedLocalKind, bool) {
	switch s {
	case "Lock":
		return names.LocalLock, true
	case "Using":
		return names.LocalUsing, true
	case "ConditionalBranchDiscriminator":
		return names.LocalConditionalBranchDiscriminator, true
	case "ForEachEnumerator":
		return names.LocalForEachEnumerator, true
	case "ForEachArray":
		return names.LocalForEachArray, true
	case "ForEachArrayIndex0":
		return names.LocalForEachArrayIndex0, true
	case "ForEachArrayLimit0":
		return names.LocalForEachArrayLimit0, true
	case "FixedString":
		return names.LocalFixedString, true
	case "LockTaken":
		return names.LocalLockTaken, true
	case "Await":
		return names.LocalAwait, true
	case "AwaitByRefReusable":
		return names.LocalAwaitByRefReusable, true
	case "TryAwaitPendingCatch":
		return names.LocalTryAwaitPendingCatch, true
	case "TryAwaitPendingStateMachineState":
		return names.LocalTryAwaitPendingStateMachineState, true
	case "ExceptionFilterAwaitHoistedExceptionLocal":
		return names.LocalExceptionFilterAwaitHoistedExceptionLocal, true
	case "Temporary", "":
		return names.LocalTemporary, true
	default:
		return 0, false
	}
}
