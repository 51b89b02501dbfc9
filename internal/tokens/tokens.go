// Package tokens defines the ECMA-335 metadata table codes and the token
// packing/unpacking used throughout the delta writer to refer to rows.
//
// A token is a 32-bit value: the high byte is the table code, the low
// 24 bits are the 1-based row id within that table.
package tokens

// Table identifies one of the metadata tables the delta writer touches.
type Table byte

const (
	TypeRef                Table = 0x01
	TypeDef                Table = 0x02
	Field                  Table = 0x04
	MethodDef              Table = 0x06
	Param                  Table = 0x08
	InterfaceImpl          Table = 0x09
	MemberRef              Table = 0x0A
	Constant               Table = 0x0B
	CustomAttribute        Table = 0x0C
	DeclSecurity           Table = 0x0E
	ClassLayout            Table = 0x0F
	FieldLayout            Table = 0x10
	StandAloneSig          Table = 0x11
	EventMap               Table = 0x12
	Event                  Table = 0x14
	PropertyMap            Table = 0x15
	Property               Table = 0x17
	MethodSemantics        Table = 0x18
	MethodImpl             Table = 0x19
	ModuleRef              Table = 0x1A
	TypeSpec               Table = 0x1B
	ImplMap                Table = 0x1C
	FieldRva               Table = 0x1D
	AssemblyRef            Table = 0x23
	NestedClass            Table = 0x29
	GenericParam           Table = 0x2A
	MethodSpec             Table = 0x2B
	GenericParamConstraint Table = 0x2C
)

// Names gives a human-readable label for log lines and reports.
var Names = map[Table]string{
	TypeRef:                "TypeRef",
	TypeDef:                "TypeDef",
	Field:                  "Field",
	MethodDef:              "MethodDef",
	Param:                  "Param",
	InterfaceImpl:          "InterfaceImpl",
	MemberRef:              "MemberRef",
	Constant:               "Constant",
	CustomAttribute:        "CustomAttribute",
	DeclSecurity:           "DeclSecurity",
	ClassLayout:            "ClassLayout",
	FieldLayout:            "FieldLayout",
	StandAloneSig:          "StandAloneSig",
	EventMap:               "EventMap",
	Event:                  "Event",
	PropertyMap:            "PropertyMap",
	Property:               "Property",
	MethodSemantics:        "MethodSemantics",
	MethodImpl:             "MethodImpl",
	ModuleRef:              "ModuleRef",
	TypeSpec:               "TypeSpec",
	ImplMap:                "ImplMap",
	FieldRva:               "FieldRva",
	AssemblyRef:            "AssemblyRef",
	NestedClass:            "NestedClass",
	GenericParam:           "GenericParam",
	MethodSpec:             "MethodSpec",
	GenericParamConstraint: "GenericParamConstraint",
}

func (t Table) String() string {
	if n, ok := Names[t]; ok {
		return n
	}
	return "UnknownTable"
}

// RowID is a 1-based row index within a metadata table.
type RowID uint32

// Token is the packed (table, row) reference used everywhere metadata
// points at an entity.
type Token uint32

// Make packs a table code and row id into a token.
func Make(t Table, row RowID) Token {
	return Token(uint32(t)<<24 | uint32(row)&0x00FFFFFF)
}

// Table extracts the table code from a token.
func (tok Token) Table() Table {
	return Table(tok >> 24)
}

// RowID extracts the 1-based row id from a token.
func (tok Token) RowID() RowID {
	return RowID(tok & 0x00FFFFFF)
}
