// Package writer declares the capability surfaces this repository consumes
// but does not implement (§6 "Consumed"): the base metadata writer that owns
// row bytes and heap interning, the module builder that lowers source into
// the shape internal/module describes, and the diagnostics sink that
// receives reference-to-added-member reports. Mirrors the narrow-interface
// style of the teacher's cache.ContentProvider — one or two methods, no
// generic "collaborator" abstraction.
package writer

import (
	"context"

	"github.com/google/uuid"

	"deltawriter/internal/module"
	"deltawriter/internal/refs"
	"deltawriter/internal/tokens"
)

// RowWriter is the base (full) metadata writer's row-emission surface: given
// a table and a row id this delta writer's indices assigned, it produces the
// row's serialized bytes. The delta writer never encodes a row itself; it
// only decides which rows exist and in what order.
type RowWriter interface {
	WriteRow(table tokens.Table, row tokens.RowID, data []byte) error
}

// HeapWriter is the base metadata writer's heap-interning surface. Offsets
// returned are relative to this delta's own contribution, matching
// sig.BlobHeap.Intern; the base writer is responsible for translating them
// into absolute heap offsets when it assembles the final stream.
type HeapWriter interface {
	InternBlob(b []byte) (offset int)
	InternString(s string) (offset int)
	InternUserString(s string) (offset int)
	InternGUID(id uuid.UUID) (offset int)
}

// ModuleBuilder produces the module this delta writer walks: parsing,
// binding, IL lowering, and closure/iterator/async synthesis all happen
// here, out of scope for this repository.
type ModuleBuilder interface {
	BuildModule(ctx context.Context) (*module.Module, error)
}

// DiagnosticsSink receives the ReferenceToAddedMember diagnostics the
// reference visitor raises (§4.3, §7). Report is called once per diagnostic,
// in the order refs.Visitor.Freeze produced them.
type DiagnosticsSink interface {
	Report(d refs.Diagnostic)
}

// CollectingSink is a DiagnosticsSink that just accumulates, useful for
// tests and for the CLI's plain-text summary.
type CollectingSink struct {
	Diagnostics []refs.Diagnostic
}

func (s *CollectingSink) Report(d refs.Diagnostic) {
	s.Diagnostics = append(s.Diagnostics, d)
}
