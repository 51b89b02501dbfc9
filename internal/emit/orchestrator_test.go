package emit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deltawriter/internal/baseline"
	"deltawriter/internal/config"
	"deltawriter/internal/module"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
	"deltawriter/internal/writer"
)

type stubRowWriter struct {
	writes []tokens.Table
}

func (w *stubRowWriter) WriteRow(table tokens.Table, row tokens.RowID, data []byte) error {
	w.writes = append(w.writes, table)
	return nil
}

type stubHeapWriter struct {
	blobsInterned int
}

func (w *stubHeapWriter) InternBlob(b []byte) int      { w.blobsInterned++; return 0 }
func (w *stubHeapWriter) InternString(s string) int    { return 0 }
func (w *stubHeapWriter) InternUserString(s string) int { return 0 }
func (w *stubHeapWriter) InternGUID(id uuid.UUID) int   { return 0 }

type stubTypes struct{}

func (stubTypes) SerializeLocalType(t module.Reference) ([]byte, error) {
	return []byte(t.TypeSpec.Blob), nil
}

func sym(kind oracle.SymbolKind, key string) oracle.SymbolID {
	return oracle.SymbolID{Kind: kind, Key: key}
}

func TestRunEmitsAddedTypeAndMethod(t *testing.T) {
	typeID := sym(oracle.TypeSymbol, "T:New")
	methodID := sym(oracle.MethodSymbol, "M:New.Do")

	td := &module.TypeDef{
		ID: typeID,
		Methods: []module.MethodDef{
			{ID: methodID, RetainsSequencePoints: true, Body: &module.MethodBody{}},
		},
	}
	mod := module.New([]*module.TypeDef{td})

	o := oracle.NewStaticOracle()
	o.TopLevel = []oracle.SymbolID{typeID}
	o.Classifications[typeID] = oracle.Added
	o.Classifications[methodID] = oracle.Added

	b := baseline.New()
	res, err := Run(context.Background(), zap.NewNop(), Request{
		Baseline: b,
		Module:   mod,
		Oracle:   o,
		DefMap:   oracle.StaticDefinitionMap{},
		Config:   config.Default(),
		EncID:    uuid.New(),
		Types:    stubTypes{},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.NextBaseline.Ordinal)
	assert.Equal(t, 1, res.TableDeltaSizes[tokens.TypeDef])
	assert.Equal(t, 1, res.TableDeltaSizes[tokens.MethodDef])
	assert.NotEmpty(t, res.EncLog)
	assert.NotEmpty(t, res.EncMap)
	assert.Len(t, res.ChangedMethods, 1)
	assert.Len(t, res.NextBaseline.AddedOrChangedMethods, 1)
}

func TestRunSkipsDebugInfoAndOrdinalForBodilessAddedMethod(t *testing.T) {
	typeID := sym(oracle.TypeSymbol, "T:New")
	bodiedID := sym(oracle.MethodSymbol, "M:New.Do")
	abstractID := sym(oracle.MethodSymbol, "M:New.Abstract")

	td := &module.TypeDef{
		ID: typeID,
		Methods: []module.MethodDef{
			{ID: bodiedID, RetainsSequencePoints: true, Body: &module.MethodBody{}},
			{ID: abstractID}, // non-implicit, no body: e.g. an added abstract/interface method
		},
	}
	mod := module.New([]*module.TypeDef{td})

	o := oracle.NewStaticOracle()
	o.TopLevel = []oracle.SymbolID{typeID}
	o.Classifications[typeID] = oracle.Added
	o.Classifications[bodiedID] = oracle.Added
	o.Classifications[abstractID] = oracle.Added

	b := baseline.New()
	res, err := Run(context.Background(), zap.NewNop(), Request{
		Baseline: b,
		Module:   mod,
		Oracle:   o,
		DefMap:   oracle.StaticDefinitionMap{},
		Config:   config.Default(),
		EncID:    uuid.New(),
		Types:    stubTypes{},
	})
	require.NoError(t, err)

	require.Len(t, res.NextBaseline.AddedOrChangedMethods, 1)
	for _, info := range res.NextBaseline.AddedOrChangedMethods {
		assert.Equal(t, 1, info.DebugID.MethodOrdinal)
	}
}

func TestRunHandsOffStandAloneSigRowsAndDiagnostics(t *testing.T) {
	typeID := sym(oracle.TypeSymbol, "T:New")
	methodID := sym(oracle.MethodSymbol, "M:New.Do")

	td := &module.TypeDef{
		ID: typeID,
		Methods: []module.MethodDef{
			{ID: methodID, RetainsSequencePoints: true, Body: &module.MethodBody{
				Locals: []module.Local{
					{HasSlot: true, Type: module.Reference{Kind: module.RefTypeSpec, TypeSpec: module.TypeSpecValue{Blob: "obj"}}},
				},
			}},
		},
	}
	mod := module.New([]*module.TypeDef{td})

	o := oracle.NewStaticOracle()
	o.TopLevel = []oracle.SymbolID{typeID}
	o.Classifications[typeID] = oracle.Added
	o.Classifications[methodID] = oracle.Added

	rows := &stubRowWriter{}
	heaps := &stubHeapWriter{}
	var sink writer.CollectingSink

	b := baseline.New()
	res, err := Run(context.Background(), zap.NewNop(), Request{
		Baseline:    b,
		Module:      mod,
		Oracle:      o,
		DefMap:      oracle.StaticDefinitionMap{},
		Config:      config.Default(),
		EncID:       uuid.New(),
		Types:       stubTypes{},
		Rows:        rows,
		Heaps:       heaps,
		Diagnostics: &sink,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, []tokens.Table{tokens.StandAloneSig}, rows.writes)
	assert.Equal(t, 1, heaps.blobsInterned)
	assert.Equal(t, res.Diagnostics, sink.Diagnostics)
}

func TestRunUpdatedMethodBodyDoesNotGrowMethodDefTable(t *testing.T) {
	typeID := sym(oracle.TypeSymbol, "T:Existing")
	methodID := sym(oracle.MethodSymbol, "M:Existing.Do")

	td := &module.TypeDef{
		ID: typeID,
		Methods: []module.MethodDef{
			{ID: methodID, RetainsSequencePoints: true, Body: &module.MethodBody{}},
		},
	}
	mod := module.New([]*module.TypeDef{td})

	o := oracle.NewStaticOracle()
	o.TopLevel = []oracle.SymbolID{typeID}
	o.Classifications[typeID] = oracle.ContainsChanges
	o.Classifications[methodID] = oracle.Updated

	b := baseline.New()
	b.TableSizes[tokens.TypeDef] = 1
	b.TableSizes[tokens.MethodDef] = 1
	b.Additions[tokens.TypeDef] = map[oracle.SymbolID]tokens.RowID{typeID: 1}
	b.Additions[tokens.MethodDef] = map[oracle.SymbolID]tokens.RowID{methodID: 1}

	res, err := Run(context.Background(), zap.NewNop(), Request{
		Baseline: b,
		Module:   mod,
		Oracle:   o,
		DefMap:   oracle.StaticDefinitionMap{},
		Config:   config.Default(),
		EncID:    uuid.New(),
		Types:    stubTypes{},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.TableDeltaSizes[tokens.MethodDef])
	assert.Len(t, res.ChangedMethods, 1)
}

func TestRunRejectsEncIDCollidingWithBaseline(t *testing.T) {
	b := baseline.New()
	o := oracle.NewStaticOracle()
	mod := module.New(nil)

	_, err := Run(context.Background(), zap.NewNop(), Request{
		Baseline: b,
		Module:   mod,
		Oracle:   o,
		DefMap:   oracle.StaticDefinitionMap{},
		Config:   config.Default(),
		EncID:    b.EncID,
		Types:    stubTypes{},
	})
	assert.Error(t, err)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	b := baseline.New()
	o := oracle.NewStaticOracle()
	mod := module.New(nil)

	_, err := Run(context.Background(), zap.NewNop(), Request{
		Baseline: b,
		Module:   mod,
		Oracle:   o,
		DefMap:   oracle.StaticDefinitionMap{},
		Config:   config.Config{CompressMetadataStream: true},
		EncID:    uuid.New(),
		Types:    stubTypes{},
	})
	assert.Error(t, err)
}

func TestRunCancellationDuringChangeDriver(t *testing.T) {
	typeID := sym(oracle.TypeSymbol, "T:A")
	td := &module.TypeDef{ID: typeID}
	mod := module.New([]*module.TypeDef{td})

	o := oracle.NewStaticOracle()
	o.TopLevel = []oracle.SymbolID{typeID}
	o.Classifications[typeID] = oracle.Added

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := baseline.New()
	_, err := Run(ctx, zap.NewNop(), Request{
		Baseline: b,
		Module:   mod,
		Oracle:   o,
		DefMap:   oracle.StaticDefinitionMap{},
		Config:   config.Default(),
		EncID:    uuid.New(),
		Types:    stubTypes{},
	})
	assert.Error(t, err)
}

func TestRunTwiceContinuesGenerationNumbering(t *testing.T) {
	typeID := sym(oracle.TypeSymbol, "T:A")
	methodID := sym(oracle.MethodSymbol, "M:A.Do")
	td := &module.TypeDef{
		ID:      typeID,
		Methods: []module.MethodDef{{ID: methodID, Body: &module.MethodBody{}}},
	}
	mod := module.New([]*module.TypeDef{td})

	o := oracle.NewStaticOracle()
	o.TopLevel = []oracle.SymbolID{typeID}
	o.Classifications[typeID] = oracle.Added
	o.Classifications[methodID] = oracle.Added

	b := baseline.New()
	res1, err := Run(context.Background(), zap.NewNop(), Request{
		Baseline: b, Module: mod, Oracle: o, DefMap: oracle.StaticDefinitionMap{}, Config: config.Default(), EncID: uuid.New(), Types: stubTypes{},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res1.NextBaseline.Ordinal)

	o2 := oracle.NewStaticOracle() // second generation: nothing changed further
	res2, err := Run(context.Background(), zap.NewNop(), Request{
		Baseline: res1.NextBaseline, Module: mod, Oracle: o2, DefMap: oracle.StaticDefinitionMap{}, Config: config.Default(), EncID: uuid.New(), Types: stubTypes{},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res2.NextBaseline.Ordinal)
	assert.Equal(t, res1.NextBaseline.EncID, res2.NextBaseline.EncBaseID)
}
