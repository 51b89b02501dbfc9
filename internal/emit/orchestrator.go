// Package emit implements the delta writer's orchestrator (§5): the fixed
// pipeline sequence that turns a baseline, a module, and a change oracle
// into a produced delta plus the next EmitBaseline.
package emit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"deltawriter/internal/baseline"
	"deltawriter/internal/change"
	"deltawriter/internal/config"
	"deltawriter/internal/deltaerr"
	"deltawriter/internal/enc"
	"deltawriter/internal/indices"
	"deltawriter/internal/module"
	"deltawriter/internal/oracle"
	"deltawriter/internal/refs"
	"deltawriter/internal/sig"
	"deltawriter/internal/tokens"
	"deltawriter/internal/writer"
)

// Request is everything one call to Run needs.
type Request struct {
	Baseline *baseline.Baseline
	Module   *module.Module
	Oracle   oracle.Oracle
	DefMap   oracle.DefinitionMap
	Config   config.Config

	// EncID is the fresh GUID identifying the generation about to be
	// produced; the caller supplies it so output is deterministic given
	// identical inputs plus this one value (§5).
	EncID uuid.UUID

	Types sig.TypeSerializer

	// AnonymousTypeMap/SynthesizedMembers are only consulted by the
	// baseline merge when Baseline.Ordinal == 0 (§4.6); pass the current
	// module builder's maps in that case, nil otherwise.
	AnonymousTypeMap   map[string]string
	SynthesizedMembers map[string]string

	// Rows/Heaps, when non-nil, are the base metadata writer's row and
	// heap surfaces (§6 "Consumed"): the local-signature serializer hands
	// every fresh StandAloneSig row off through them as it emits it.
	Rows  writer.RowWriter
	Heaps writer.HeapWriter

	// Diagnostics, when non-nil, additionally receives every
	// ReferenceToAddedMember diagnostic the reference visitor raises, in
	// the order Result.Diagnostics lists them.
	Diagnostics writer.DiagnosticsSink

	// Builder produces Module when the caller has not already built one;
	// consulted only when Module is nil.
	Builder writer.ModuleBuilder
}

// Result is the orchestrator's output: the produced EncLog/EncMap, the
// diagnostics the reference visitor raised, the next baseline, and the set
// of methods the debugger will attempt to remap.
type Result struct {
	EncLog []enc.LogRow
	EncMap []tokens.Token

	Diagnostics []refs.Diagnostic

	NextBaseline *baseline.Baseline

	// ChangedMethods are MethodDef tokens whose body changed this
	// generation and which retained sequence points (§6 "Produced").
	ChangedMethods []tokens.Token

	// TableDeltaSizes is the per-table row-count contribution of this
	// delta, useful for CLI/report summaries.
	TableDeltaSizes map[tokens.Table]int
}

// Run executes the fixed pipeline: create indices, visit references,
// serialize bodies, compute delta table sizes, build EncLog, build EncMap,
// merge baseline. ctx is polled at the safe points named in §5; on
// cancellation no output and no baseline update are produced.
func Run(ctx context.Context, log *zap.Logger, req Request) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}
	if req.EncID == req.Baseline.EncID || req.EncID == req.Baseline.EncBaseID {
		return nil, deltaerr.Invariant("emit: fresh EncID %s collides with an existing generation id", req.EncID)
	}

	mod := req.Module
	if mod == nil {
		if req.Builder == nil {
			return nil, deltaerr.Invariant("emit: no module and no ModuleBuilder to produce one")
		}
		var err error
		mod, err = req.Builder.BuildModule(ctx)
		if err != nil {
			return nil, err
		}
	}

	idxSet := indices.NewSet(req.Baseline, req.DefMap)
	log.Debug("indices seeded", zap.Int("generation", req.Baseline.Ordinal+1))

	drv := &change.Driver{
		Oracle: req.Oracle,
		Module: mod,
		Indices: change.Indices{
			TypeDefs:      idxSet.TypeDefs,
			MethodDefs:    idxSet.MethodDefs,
			FieldDefs:     idxSet.FieldDefs,
			EventDefs:     idxSet.EventDefs,
			PropertyDefs:  idxSet.PropertyDefs,
			Params:        idxSet.Params,
			GenericParams: idxSet.GenericParams,
			EventMap:      idxSet.EventMap,
			PropertyMap:   idxSet.PropertyMap,
			MethodImpls:   idxSet.MethodImpls,
		},
	}
	changeResult, err := drv.Run(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("change driver finished",
		zap.Int("typesAdded", idxSet.TypeDefs.AddedCount()),
		zap.Int("methodsTouched", len(idxSet.MethodDefs.Rows())))

	visitor := &refs.Visitor{
		Oracle: req.Oracle,
		Indices: refs.Indices{
			AssemblyRef: idxSet.AssemblyRef,
			ModuleRef:   idxSet.ModuleRef,
			TypeRef:     idxSet.TypeRef,
			TypeSpec:    idxSet.TypeSpec,
			MemberRef:   idxSet.MemberRef,
			MethodSpec:  idxSet.MethodSpec,
		},
	}
	if err := visitor.VisitModule(ctx, mod); err != nil {
		return nil, err
	}
	visitor.Freeze()
	idxSet.FreezeReferences()
	log.Debug("reference visitor finished", zap.Int("diagnostics", len(visitor.Diagnostics)))

	if req.Diagnostics != nil {
		for _, d := range visitor.Diagnostics {
			req.Diagnostics.Report(d)
		}
	}

	blobHeap := &sig.BlobHeap{}
	serializer := &sig.Serializer{
		Blob:          blobHeap,
		StandAloneSig: idxSet.StandAloneSig,
		Types:         req.Types,
		Debug:         req.Config.DebugInformation,
		Rows:          req.Rows,
		Heaps:         req.Heaps,
	}

	generation := req.Baseline.Ordinal + 1
	addedOrChanged := make(map[tokens.RowID]baseline.MethodDebugInfo)
	var changedMethodTokens []tokens.Token
	methodOrdinal := 0

	for _, row := range idxSet.MethodDefs.Rows() {
		if err := ctx.Err(); err != nil {
			return nil, deltaerr.New(deltaerr.Cancelled, "emit: cancelled during local-signature serialization")
		}
		id, ok := idxSet.MethodDefs.Get(row.RowID)
		if !ok {
			return nil, deltaerr.Invariant("emit: methoddef row %d has no reverse mapping", row.RowID)
		}
		m, ok := mod.Method(id)
		if !ok {
			return nil, deltaerr.Invariant("emit: methoddef %v missing from module", id)
		}

		sigResult, err := serializer.SerializeLocals(ctx, m.Body)
		if err != nil {
			return nil, err
		}

		if !m.Implicit && m.Body != nil {
			methodOrdinal++
			addedOrChanged[row.RowID] = sig.BuildMethodDebugInfo(generation, methodOrdinal, sigResult.Locals)
		}
		if m.Body != nil && m.RetainsSequencePoints {
			changedMethodTokens = append(changedMethodTokens, tokens.Make(tokens.MethodDef, row.RowID))
		}
	}
	idxSet.FreezeAll()

	deltaSizes := idxSet.DeltaSizes()
	nestedClassCount := countAddedNested(mod, idxSet.TypeDefs)

	arPrev, arDelta := idxSet.AssemblyRefRange()
	mrPrev, mrDelta := idxSet.ModuleRefRange()
	memPrev, memDelta := idxSet.MemberRefRange()
	msPrev, msDelta := idxSet.MethodSpecRange()
	trPrev, trDelta := idxSet.TypeRefRange()
	tsPrev, tsDelta := idxSet.TypeSpecRange()
	sasPrev, sasDelta := idxSet.StandAloneSigRange()

	encInputs := enc.Inputs{
		AssemblyRef:   enc.Range{PreviousSize: arPrev, DeltaSize: arDelta},
		ModuleRef:     enc.Range{PreviousSize: mrPrev, DeltaSize: mrDelta},
		MemberRef:     enc.Range{PreviousSize: memPrev, DeltaSize: memDelta},
		MethodSpec:    enc.Range{PreviousSize: msPrev, DeltaSize: msDelta},
		TypeRef:       enc.Range{PreviousSize: trPrev, DeltaSize: trDelta},
		TypeSpec:      enc.Range{PreviousSize: tsPrev, DeltaSize: tsDelta},
		StandAloneSig: enc.Range{PreviousSize: sasPrev, DeltaSize: sasDelta},

		TypeDefs:     idxSet.TypeDefs,
		EventMapRows: idxSet.EventMap.Rows(),
		PropMapRows:  idxSet.PropertyMap.Rows(),
		EventDefs:    idxSet.EventDefs,
		FieldDefs:    idxSet.FieldDefs,
		MethodDefs:   idxSet.MethodDefs,
		PropertyDefs: idxSet.PropertyDefs,

		EventOwners:    changeResult.EventOwners,
		FieldOwners:    changeResult.FieldOwners,
		MethodOwners:   changeResult.MethodOwners,
		PropertyOwners: changeResult.PropertyOwners,

		Params:     idxSet.Params,
		ParamPairs: changeResult.ParamPairs,

		Linear: enc.LinearRanges{
			MethodImpl:   enc.Range{PreviousSize: req.Baseline.TableSize(tokens.MethodImpl), DeltaSize: idxSet.MethodImpls.AddedCount()},
			NestedClass:  enc.Range{PreviousSize: req.Baseline.TableSize(tokens.NestedClass), DeltaSize: nestedClassCount},
			GenericParam: enc.Range{PreviousSize: req.Baseline.TableSize(tokens.GenericParam), DeltaSize: idxSet.GenericParams.Count()},
		},
	}

	encLog, err := enc.BuildLog(encInputs)
	if err != nil {
		return nil, err
	}
	encMap, err := enc.BuildMap(encInputs)
	if err != nil {
		return nil, err
	}
	log.Info("delta emitted",
		zap.Int("generation", generation),
		zap.Int("encLogRows", len(encLog)),
		zap.Int("encMapTokens", len(encMap)))

	nextBaseline, err := baseline.Merge(req.Baseline, baseline.MergeInput{
		EncID:     req.EncID,
		Additions: idxSet.Additions(),

		TableDeltaSizes: deltaSizes,
		HeapContributions: baseline.HeapLengths{
			Blob: blobHeap.AlignedLen(),
		},

		NewTypeToEventMap:    mapRowOwners(idxSet.EventMap),
		NewTypeToPropertyMap: mapRowOwners(idxSet.PropertyMap),
		NewMethodImpls:       idxSet.MethodImpls.Added(),

		AddedOrChangedMethods: addedOrChanged,

		AnonymousTypeMap:   req.AnonymousTypeMap,
		SynthesizedMembers: req.SynthesizedMembers,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		EncLog:          encLog,
		EncMap:          encMap,
		Diagnostics:     visitor.Diagnostics,
		NextBaseline:    nextBaseline,
		ChangedMethods:  changedMethodTokens,
		TableDeltaSizes: deltaSizes,
	}, nil
}

// countAddedNested counts newly added TypeDef rows that are nested inside
// another type, for the NestedClass table's linear EncLog/EncMap range.
func countAddedNested(mod *module.Module, typeDefs *indices.DefinitionIndex) int {
	count := 0
	for id := range typeDefs.Added() {
		if _, hasOwner := mod.OwningType(id); hasOwner {
			count++
		}
	}
	return count
}

// mapRowOwners returns a MapIndex's Added() (typeRow->mapRow) unchanged;
// that is already the shape baseline.MergeInput expects.
func mapRowOwners(idx *indices.MapIndex) map[tokens.RowID]tokens.RowID {
	return idx.Added()
}
