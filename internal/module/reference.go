package module

import "deltawriter/internal/oracle"

// RefKind discriminates which reference table a Reference targets.
type RefKind int

const (
	RefAssembly RefKind = iota
	RefModule
	RefType
	RefTypeSpec
	RefMember
	RefMethodSpec
)

// AssemblyRefValue is the nominal identity of an AssemblyRef row.
type AssemblyRefValue struct {
	Name, Version, Culture, PublicKeyToken string
}

// ModuleRefValue is the nominal identity of a ModuleRef row.
type ModuleRefValue struct {
	Name string
}

// TypeRefValue is the structural identity of a TypeRef row: its resolution
// scope (an opaque key identifying an AssemblyRef/ModuleRef/enclosing
// TypeRef) plus namespace and name.
type TypeRefValue struct {
	ResolutionScope string
	Namespace       string
	Name            string
}

// TypeSpecValue is the structural identity of a constructed type (an
// instantiated generic, array, pointer, or by-ref type): an opaque encoded
// signature blob rendered as a string so it can key a map.
type TypeSpecValue struct {
	Blob string
}

// MemberRefValue is the structural identity of a field or method reference
// against an external parent (TypeRef, TypeSpec or ModuleRef).
type MemberRefValue struct {
	ParentKey string
	Name      string
	Signature string
}

// MethodSpecValue is the structural identity of a generic method
// instantiation.
type MethodSpecValue struct {
	MethodKey     string
	Instantiation string
}

// Reference is one edge the reference visitor may need to resolve into a
// row via the matching reference index. Target/HasTarget/SimpleName /
// AssemblyDisplayName are only meaningful for RefType and RefMember: they
// let the visitor recognize a reference to a symbol the oracle classifies
// as newly added in this generation and build the diagnostic the spec
// requires (§4.3, §8 scenario 6).
type Reference struct {
	Kind RefKind

	Assembly   AssemblyRefValue
	Module     ModuleRefValue
	Type       TypeRefValue
	TypeSpec   TypeSpecValue
	Member     MemberRefValue
	MethodSpec MethodSpecValue

	HasTarget           bool
	Target              oracle.SymbolID
	SimpleName          string
	AssemblyDisplayName string
}
