// Package refs implements the delta writer's reference visitor (§4.3): a
// traversal pruned by the change oracle that populates every reference
// index and flags references to symbols the oracle reports as newly added.
package refs

import (
	"context"

	"deltawriter/internal/deltaerr"
	"deltawriter/internal/indices"
	"deltawriter/internal/module"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

// Indices bundles the content-addressed reference-shaped indices the
// visitor populates.
type Indices struct {
	AssemblyRef *indices.ReferenceIndex[module.AssemblyRefValue]
	ModuleRef   *indices.ReferenceIndex[module.ModuleRefValue]
	TypeRef     *indices.ReferenceIndex[module.TypeRefValue]
	TypeSpec    *indices.ReferenceIndex[module.TypeSpecValue]
	MemberRef   *indices.ReferenceIndex[module.MemberRefValue]
	MethodSpec  *indices.ReferenceIndex[module.MethodSpecValue]
}

// Diagnostic is the ReferenceToAddedMember diagnostic (§7, §8 scenario 6):
// non-fatal at emission time, recorded against the referring location.
type Diagnostic struct {
	SimpleName          string
	AssemblyDisplayName string
	Target              oracle.SymbolID
	Kind                module.RefKind
}

// Visitor walks a module and populates Indices, pruned by Oracle.
type Visitor struct {
	Oracle  oracle.Oracle
	Indices Indices

	// flagged accumulates every RefType/RefMember reference seen so far
	// that names a target symbol; the sweep after Freeze turns the ones the
	// oracle now reports as Added into Diagnostics.
	flagged     []Reference
	Diagnostics []Diagnostic
}

// Reference pairs a module.Reference with the token the corresponding
// index assigned it, for the post-visit added-member sweep.
type Reference struct {
	Ref module.Reference
	Tok tokens.Token
}

// VisitModule walks every top-level type. ctx is polled between top-level
// types, mirroring the change driver's cancellation safe point.
func (v *Visitor) VisitModule(ctx context.Context, mod *module.Module) error {
	for _, t := range mod.TopLevelTypes() {
		if err := ctx.Err(); err != nil {
			return deltaerr.New(deltaerr.Cancelled, "refs: cancelled before type %v", t.ID)
		}
		if err := v.visitType(t); err != nil {
			return err
		}
	}
	return nil
}

// Freeze freezes every reference index and runs the added-member sweep,
// per §4.3 ("After the visit, every reference index is frozen. The writer
// then sweeps type/member references...").
func (v *Visitor) Freeze() {
	v.Indices.AssemblyRef.Freeze()
	v.Indices.ModuleRef.Freeze()
	v.Indices.TypeRef.Freeze()
	v.Indices.TypeSpec.Freeze()
	v.Indices.MemberRef.Freeze()
	v.Indices.MethodSpec.Freeze()

	for _, f := range v.flagged {
		if v.Oracle.IsAdded(f.Ref.Target) {
			v.Diagnostics = append(v.Diagnostics, Diagnostic{
				SimpleName:          f.Ref.SimpleName,
				AssemblyDisplayName: f.Ref.AssemblyDisplayName,
				Target:              f.Ref.Target,
				Kind:                f.Ref.Kind,
			})
		}
	}
}

func (v *Visitor) visitType(t *module.TypeDef) error {
	if v.Oracle.Classify(t.ID) == oracle.None {
		return nil
	}
	for i := range t.Methods {
		if err := v.visitMethod(&t.Methods[i]); err != nil {
			return err
		}
	}
	for _, impl := range t.ExplicitImpls {
		// Older MethodImpl rows persist by reference in the baseline; only
		// a newly added implementing method needs its references walked.
		if v.Oracle.Classify(impl.Method) != oracle.Added {
			continue
		}
		for _, ref := range impl.References {
			if err := v.visitReference(ref); err != nil {
				return err
			}
		}
	}
	for _, nt := range t.NestedTypes {
		if err := v.visitType(nt); err != nil {
			return err
		}
	}
	return nil
}

func (v *Visitor) visitMethod(m *module.MethodDef) error {
	if v.Oracle.Classify(m.ID) == oracle.None {
		return nil
	}
	if m.Body == nil {
		return nil
	}
	for _, ref := range m.Body.References {
		if err := v.visitReference(ref); err != nil {
			return err
		}
	}
	// A pre-serialized body signature is taken as-is (§4.4, §9 open
	// question); locals underneath it are not walked for references.
	if len(m.Body.PreSerializedSignature) > 0 {
		return nil
	}
	for _, l := range m.Body.Locals {
		if len(l.CachedSignature) > 0 {
			continue
		}
		for _, ref := range l.TypeReferences {
			if err := v.visitReference(ref); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Visitor) visitReference(ref module.Reference) error {
	var tok tokens.Token
	switch ref.Kind {
	case module.RefAssembly:
		row, err := v.Indices.AssemblyRef.GetOrAdd(ref.Assembly)
		if err != nil {
			return err
		}
		tok = tokens.Make(tokens.AssemblyRef, row)
	case module.RefModule:
		row, err := v.Indices.ModuleRef.GetOrAdd(ref.Module)
		if err != nil {
			return err
		}
		tok = tokens.Make(tokens.ModuleRef, row)
	case module.RefType:
		row, err := v.Indices.TypeRef.GetOrAdd(ref.Type)
		if err != nil {
			return err
		}
		tok = tokens.Make(tokens.TypeRef, row)
	case module.RefTypeSpec:
		row, err := v.Indices.TypeSpec.GetOrAdd(ref.TypeSpec)
		if err != nil {
			return err
		}
		tok = tokens.Make(tokens.TypeSpec, row)
	case module.RefMember:
		row, err := v.Indices.MemberRef.GetOrAdd(ref.Member)
		if err != nil {
			return err
		}
		tok = tokens.Make(tokens.MemberRef, row)
	case module.RefMethodSpec:
		row, err := v.Indices.MethodSpec.GetOrAdd(ref.MethodSpec)
		if err != nil {
			return err
		}
		tok = tokens.Make(tokens.MethodSpec, row)
	default:
		return deltaerr.Invariant("refs: unknown reference kind %d", ref.Kind)
	}

	if ref.HasTarget && (ref.Kind == module.RefType || ref.Kind == module.RefMember) {
		v.flagged = append(v.flagged, Reference{Ref: ref, Tok: tok})
	}
	return nil
}
