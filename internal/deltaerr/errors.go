// Package deltaerr defines the delta writer's error taxonomy and a small
// aggregator for reporting several invariant violations as one error,
// adapted from the aggregation pattern in the teacher's schema validator.
package deltaerr

import (
	"errors"
	"fmt"
)

// Kind classifies a delta-writer failure per the error taxonomy.
type Kind int

const (
	// InvariantViolation covers any violation of the data-model invariants:
	// non-contiguous row ids, a write against a frozen index, duplicate
	// EncMap tokens, an unresolved lookup for a symbol that must already
	// exist, and an out-of-range change classification.
	InvariantViolation Kind = iota
	// ReferenceToAddedMember flags a reference to a symbol the oracle
	// reports as newly added in this generation; non-fatal at emission
	// time, recorded as a diagnostic.
	ReferenceToAddedMember
	// Cancelled marks cooperative cancellation: no output, no baseline
	// update.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvariantViolation:
		return "InvariantViolation"
	case ReferenceToAddedMember:
		return "ReferenceToAddedMember"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the delta writer's error type: a Kind plus a formatted message.
// UnexpectedChangeKind is reported as an InvariantViolation per the spec's
// error taxonomy ("treated as InvariantViolation").
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a *Error for the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Invariant is a convenience constructor for the most common kind.
func Invariant(format string, args ...any) *Error {
	return New(InvariantViolation, format, args...)
}

// IsCancelled reports whether err is (or wraps) a Cancelled error.
func IsCancelled(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == Cancelled
	}
	return false
}
