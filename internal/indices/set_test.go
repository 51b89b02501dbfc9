package indices

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deltawriter/internal/baseline"
	"deltawriter/internal/module"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

func TestNewSetSeedsFromBaseline(t *testing.T) {
	b := baseline.New()
	b.TableSizes[tokens.MethodDef] = 3
	b.TableSizes[tokens.AssemblyRef] = 1

	s := NewSet(b, nil)

	id := oracle.SymbolID{Kind: oracle.MethodSymbol, Key: "M:New"}
	row, err := s.MethodDefs.Add(id)
	assert.NoError(t, err)
	assert.EqualValues(t, 4, row)

	_, err = s.AssemblyRef.GetOrAdd(module.AssemblyRefValue{Name: "mscorlib"})
	assert.NoError(t, err)
	assert.Equal(t, 1, s.AssemblyRef.Count())
}

func TestSetDeltaSizesReflectsAddedCounts(t *testing.T) {
	b := baseline.New()
	s := NewSet(b, nil)

	_, err := s.TypeDefs.Add(oracle.SymbolID{Kind: oracle.TypeSymbol, Key: "T:A"})
	assert.NoError(t, err)
	_, err = s.Params.Add(oracle.SymbolID{Kind: oracle.ParamSymbol, Key: "P:A"})
	assert.NoError(t, err)

	sizes := s.DeltaSizes()
	assert.Equal(t, 1, sizes[tokens.TypeDef])
	assert.Equal(t, 1, sizes[tokens.Param])
	assert.Equal(t, 0, sizes[tokens.MethodDef])
}

func TestSetAdditionsCollectsDefinitionTables(t *testing.T) {
	b := baseline.New()
	s := NewSet(b, nil)

	id := oracle.SymbolID{Kind: oracle.FieldSymbol, Key: "F:A"}
	_, err := s.FieldDefs.Add(id)
	assert.NoError(t, err)

	adds := s.Additions()
	assert.Equal(t, map[oracle.SymbolID]tokens.RowID{id: 1}, adds[tokens.Field])
	assert.Empty(t, adds[tokens.MethodDef])
}

func TestSetFreezeReferencesDoesNotFreezeDefinitions(t *testing.T) {
	b := baseline.New()
	s := NewSet(b, nil)
	s.FreezeReferences()

	// definition indices remain writable
	_, err := s.TypeDefs.Add(oracle.SymbolID{Kind: oracle.TypeSymbol, Key: "T:A"})
	assert.NoError(t, err)

	// reference indices are frozen
	_, err = s.AssemblyRef.GetOrAdd(module.AssemblyRefValue{Name: "x"})
	assert.Error(t, err)
}

func TestSetRangeHelpersReportPreviousSizeAndDelta(t *testing.T) {
	b := baseline.New()
	b.TableSizes[tokens.ModuleRef] = 2
	s := NewSet(b, nil)

	_, err := s.ModuleRef.GetOrAdd(module.ModuleRefValue{Name: "a"})
	assert.NoError(t, err)

	prevSize, deltaSize := s.ModuleRefRange()
	assert.Equal(t, 2, prevSize)
	assert.Equal(t, 1, deltaSize)
}
