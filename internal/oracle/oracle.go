// Package oracle declares the capability surfaces the delta writer consumes
// from its collaborators: the change oracle (what changed relative to the
// baseline) and the definition map (where pre-existing symbols already
// live). Both are narrow, five-operations-or-fewer interfaces by design —
// the writer has no business modeling a general "symbol observer".
package oracle

import (
	"fmt"
	"strconv"
	"strings"
)

// SymbolKind identifies which metadata table a SymbolID ultimately belongs
// to. It lets a single opaque identity type serve every definition kind the
// writer touches.
type SymbolKind int

const (
	TypeSymbol SymbolKind = iota
	MethodSymbol
	FieldSymbol
	EventSymbol
	PropertySymbol
	ParamSymbol
	GenericParamSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case TypeSymbol:
		return "Type"
	case MethodSymbol:
		return "Method"
	case FieldSymbol:
		return "Field"
	case EventSymbol:
		return "Event"
	case PropertySymbol:
		return "Property"
	case ParamSymbol:
		return "Param"
	case GenericParamSymbol:
		return "GenericParam"
	default:
		return "Unknown"
	}
}

// SymbolID is the opaque, comparable identity of a definition. The binder
// (out of scope for this writer) is responsible for keeping Key stable
// across generations for any symbol that survives an edit.
type SymbolID struct {
	Kind SymbolKind
	Key  string
}

// MarshalText/UnmarshalText let SymbolID serve as a JSON map key, which the
// baseline persistence layer relies on for Additions.
func (id SymbolID) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d:%s", id.Kind, id.Key)), nil
}

func (id *SymbolID) UnmarshalText(text []byte) error {
	s := string(text)
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return fmt.Errorf("oracle: malformed SymbolID text %q", s)
	}
	kind, err := strconv.Atoi(s[:i])
	if err != nil {
		return fmt.Errorf("oracle: malformed SymbolID kind in %q: %w", s, err)
	}
	id.Kind = SymbolKind(kind)
	id.Key = s[i+1:]
	return nil
}

// ChangeKind classifies a symbol relative to the baseline.
type ChangeKind int

const (
	// None means the symbol (and, for a type, its entire transitive
	// closure of members) is unchanged in this generation.
	None ChangeKind = iota
	// Added means the symbol did not exist in any previous generation.
	Added
	// Updated means the symbol existed before and its body/signature
	// changed in this generation; its row id is not reassigned.
	Updated
	// ContainsChanges means the symbol itself is unchanged but something
	// nested within it changed (e.g. a type whose method body changed).
	ContainsChanges
)

func (c ChangeKind) String() string {
	switch c {
	case None:
		return "None"
	case Added:
		return "Added"
	case Updated:
		return "Updated"
	case ContainsChanges:
		return "ContainsChanges"
	default:
		return "Unknown"
	}
}

// Oracle answers what changed in this generation relative to the baseline.
type Oracle interface {
	// Classify returns the change kind for any definition the writer may
	// ask about.
	Classify(id SymbolID) ChangeKind

	// IsAdded is a convenience predicate used by the reference visitor to
	// flag references to symbols the runtime cannot yet resolve.
	IsAdded(id SymbolID) bool

	// TopLevelTypes enumerates the top-level types whose transitive
	// closure contains at least one change. Types with no change anywhere
	// in their closure are never yielded.
	TopLevelTypes() []SymbolID
}
