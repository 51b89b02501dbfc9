// Package baseline holds the immutable record of everything a delta writer
// needs to continue numbering metadata rows: table sizes after the previous
// generation, heap stream lengths, and the accumulated row-id assignments
// for every definition table and auxiliary map. It also carries forward the
// per-method debug information the debugger needs to correlate method
// bodies across generations.
package baseline

import (
	"fmt"

	"github.com/google/uuid"

	"deltawriter/internal/names"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

// HeapLengths records the running length (in bytes) of each heap stream.
type HeapLengths struct {
	Strings int
	US      int
	Blob    int
	GUID    int
}

// MethodImplKey identifies one MethodImpl row by the implementing method's
// row and its 1-based occurrence index among that method's explicit
// interface implementations.
type MethodImplKey struct {
	MethodDefRow tokens.RowID
	Occurrence   int
}

// MarshalText/UnmarshalText let MethodImplKey serve as a JSON map key for
// baseline persistence.
func (k MethodImplKey) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d:%d", k.MethodDefRow, k.Occurrence)), nil
}

func (k *MethodImplKey) UnmarshalText(text []byte) error {
	var row uint32
	var occ int
	if _, err := fmt.Sscanf(string(text), "%d:%d", &row, &occ); err != nil {
		return fmt.Errorf("baseline: malformed MethodImplKey text %q: %w", text, err)
	}
	k.MethodDefRow = tokens.RowID(row)
	k.Occurrence = occ
	return nil
}

// MethodDebugID is the durable key the debugger uses to correlate a
// method's successive bodies across generations.
type MethodDebugID struct {
	MethodOrdinal int
	Generation    int
}

// LocalSlot describes one local variable slot in a method body's
// stand-alone signature.
type LocalSlot struct {
	// Temporary is true for unnamed, signature-only slots. When true, the
	// remaining fields besides SignatureBlob are meaningless.
	Temporary bool

	SynthesizedKind names.SynthesizedLocalKind
	Ordinal         int
	SyntaxOffset    int

	// Name is the on-disk synthesized name for this slot, formatted by
	// internal/names according to the configured debug information level.
	// Empty when the slot is unnamed (Temporary, or a kind the current
	// debug level does not surface).
	Name string

	// Type is the serialized type descriptor for the local, as produced by
	// the general signature serializer (out of scope for this package).
	Type        []byte
	Constraints []string

	// SignatureBlob is the byte range within the local signature blob this
	// slot's type occupies; once computed it is cached here so later
	// generations that keep the same local reuse it verbatim.
	SignatureBlob []byte
}

// MethodDebugInfo accumulates everything the debugger needs about one
// method body, across however many generations have touched it.
type MethodDebugInfo struct {
	DebugID MethodDebugID

	LocalSlots []LocalSlot

	// LambdaDebugInfo/ClosureDebugInfo are opaque descriptors produced by
	// the module builder (out of scope); the writer only stores and carries
	// them forward.
	LambdaDebugInfo  []byte
	ClosureDebugInfo []byte

	StateMachineTypeName           string
	StateMachineHoistedLocalSlots  []LocalSlot
	StateMachineAwaiterSlots       []int
}

// Baseline is the immutable record produced at the end of one generation
// and consumed at the start of the next. Generation 0 is the original PE;
// every Baseline here describes generation Ordinal's state, i.e. the state
// the next delta must continue from.
type Baseline struct {
	Ordinal    int
	EncID      uuid.UUID
	EncBaseID  uuid.UUID

	TableSizes  map[tokens.Table]int
	HeapLengths HeapLengths

	// Additions maps, per definition table, a symbol identity to the row
	// id it was assigned in whichever generation added it.
	Additions map[tokens.Table]map[oracle.SymbolID]tokens.RowID

	TypeToEventMap    map[tokens.RowID]tokens.RowID
	TypeToPropertyMap map[tokens.RowID]tokens.RowID
	MethodImpls       map[MethodImplKey]tokens.RowID

	AddedOrChangedMethods map[tokens.RowID]MethodDebugInfo

	// AnonymousTypeMap and SynthesizedMembers are carried forward unchanged
	// by the core; their contents are module-builder concerns.
	AnonymousTypeMap    map[string]string
	SynthesizedMembers  map[string]string
}

// New returns an empty generation-0 baseline: no rows, no additions, fresh
// EncID, and a nil EncBaseID (generation 0 has no predecessor delta).
func New() *Baseline {
	return &Baseline{
		Ordinal:               0,
		EncID:                 uuid.New(),
		TableSizes:            make(map[tokens.Table]int),
		Additions:             make(map[tokens.Table]map[oracle.SymbolID]tokens.RowID),
		TypeToEventMap:        make(map[tokens.RowID]tokens.RowID),
		TypeToPropertyMap:     make(map[tokens.RowID]tokens.RowID),
		MethodImpls:           make(map[MethodImplKey]tokens.RowID),
		AddedOrChangedMethods: make(map[tokens.RowID]MethodDebugInfo),
		AnonymousTypeMap:      make(map[string]string),
		SynthesizedMembers:    make(map[string]string),
	}
}

// TableSize returns the row count recorded for table t, or 0 if the table
// has never been touched.
func (b *Baseline) TableSize(t tokens.Table) int {
	return b.TableSizes[t]
}

// AdditionsFor returns the symbol->row map for table t, creating no entry
// if absent (callers must treat a nil map as empty).
func (b *Baseline) AdditionsFor(t tokens.Table) map[oracle.SymbolID]tokens.RowID {
	return b.Additions[t]
}
