// Package sig implements the delta writer's local-variable signature
// serializer (§4.4): for each emitted method body, it produces the
// stand-alone LocalSig blob and the per-local EncLocalInfo records the
// debugger needs to map slots across generations.
package sig

import (
	"bytes"
	"context"
	"sync"

	"deltawriter/internal/baseline"
	"deltawriter/internal/config"
	"deltawriter/internal/deltaerr"
	"deltawriter/internal/indices"
	"deltawriter/internal/module"
	"deltawriter/internal/names"
	"deltawriter/internal/tokens"
	"deltawriter/internal/writer"
)

// localSigLeadByte is ECMA-335 II.23.2.6's LOCAL_SIG leading byte.
const localSigLeadByte = 0x07

// TypeSerializer is the general signature serializer, out of scope for the
// delta writer proper: it renders one local's type into its signature-blob
// encoding.
type TypeSerializer interface {
	SerializeLocalType(t module.Reference) ([]byte, error)
}

// bufPool holds the scratch buffers SerializeLocals borrows: acquired at
// entry, released on every exit path via the deferred guard func, per §5
// and the "Scoped byte buffers" design note.
var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

func acquireBuffer() (*bytes.Buffer, func()) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf, func() { bufPool.Put(buf) }
}

// Serializer produces LocalSig blobs and StandAloneSig rows for method
// bodies, deduplicating identical signatures the way a reference index
// deduplicates any other structurally-addressed row.
type Serializer struct {
	Blob          *BlobHeap
	StandAloneSig *indices.ReferenceIndex[string]
	Types         TypeSerializer

	// Debug selects which synthesized local kinds get a Format-ed name
	// (§6); the zero value is config.DebugFull, so a Serializer built
	// without setting this field names every long-lived local.
	Debug config.DebugInformation

	// Rows/Heaps, when non-nil, are the base metadata writer's row and
	// heap surfaces (§6 "Consumed"): every fresh StandAloneSig row this
	// call assigns is handed off through them.
	Rows  writer.RowWriter
	Heaps writer.HeapWriter
}

// Result is what one method body's local serialization produced. Token is
// the zero Token when the body has no locals — §4.4 step 1: no
// stand-alone signature is emitted and no EncLocalInfo is recorded.
type Result struct {
	Token  tokens.Token
	Locals []baseline.LocalSlot
}

// SerializeLocals implements §4.4 steps 1-5 for one method body.
func (s *Serializer) SerializeLocals(ctx context.Context, body *module.MethodBody) (Result, error) {
	if body == nil || len(body.Locals) == 0 {
		return Result{}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, deltaerr.New(deltaerr.Cancelled, "sig: cancelled before serializing locals")
	}

	buf, release := acquireBuffer()
	defer release()

	buf.WriteByte(localSigLeadByte)
	buf.Write(compressUint(uint32(len(body.Locals))))

	slots := make([]baseline.LocalSlot, len(body.Locals))
	for i, l := range body.Locals {
		var sigBytes []byte
		if len(l.CachedSignature) > 0 {
			sigBytes = l.CachedSignature
			buf.Write(sigBytes)
		} else {
			start := buf.Len()
			encoded, err := s.Types.SerializeLocalType(l.Type)
			if err != nil {
				return Result{}, err
			}
			buf.Write(encoded)
			sigBytes = append([]byte(nil), buf.Bytes()[start:]...)
		}
		slots[i] = s.toLocalSlot(l, sigBytes)
	}

	blob := append([]byte(nil), buf.Bytes()...)
	_, existed := s.StandAloneSig.TryGet(string(blob))
	row, err := s.StandAloneSig.GetOrAdd(string(blob))
	if err != nil {
		return Result{}, err
	}
	if !existed {
		s.Blob.Intern(blob)
		if s.Heaps != nil {
			s.Heaps.InternBlob(blob)
		}
		if s.Rows != nil {
			if err := s.Rows.WriteRow(tokens.StandAloneSig, row, blob); err != nil {
				return Result{}, err
			}
		}
	}

	return Result{
		Token:  tokens.Make(tokens.StandAloneSig, row),
		Locals: slots,
	}, nil
}

// toLocalSlot builds the LocalSlot the debugger consumes for one local,
// naming it via internal/names when the local's kind is long-lived and the
// configured debug level surfaces it (§6). uniqueID is derived from the
// local's syntax offset, the only per-local discriminator the module
// exposes, truncated to the 4 digits Format requires.
func (s *Serializer) toLocalSlot(l module.Local, sig []byte) baseline.LocalSlot {
	if !l.HasSlot {
		return baseline.LocalSlot{Temporary: true, SignatureBlob: sig}
	}
	slot := baseline.LocalSlot{
		SynthesizedKind: l.Kind,
		Ordinal:         l.Ordinal,
		SyntaxOffset:    l.SyntaxOffset,
		Constraints:     l.Constraints,
		SignatureBlob:   sig,
	}
	if names.ShouldName(l.Kind, s.Debug == config.DebugFull) {
		uniqueID := l.SyntaxOffset % 10000
		if uniqueID < 0 {
			uniqueID = -uniqueID
		}
		slot.Name = names.Format(l.Kind, l.Ordinal, uniqueID)
	}
	return slot
}

// BuildMethodDebugInfo assembles the MethodDebugInfo entry §4.4 step 6
// requires for every non-implicit method: a fresh MethodDebugID for this
// generation plus the local slots just serialized.
func BuildMethodDebugInfo(generation, methodOrdinal int, locals []baseline.LocalSlot) baseline.MethodDebugInfo {
	return baseline.MethodDebugInfo{
		DebugID: baseline.MethodDebugID{
			MethodOrdinal: methodOrdinal,
			Generation:    generation,
		},
		LocalSlots: locals,
	}
}
