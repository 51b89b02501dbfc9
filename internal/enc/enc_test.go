package enc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltawriter/internal/change"
	"deltawriter/internal/indices"
	"deltawriter/internal/oracle"
	"deltawriter/internal/tokens"
)

func sym(kind oracle.SymbolKind, key string) oracle.SymbolID {
	return oracle.SymbolID{Kind: kind, Key: key}
}

func emptyInputs() Inputs {
	return Inputs{
		TypeDefs:     indices.NewDefinitionIndex(tokens.TypeDef, 0, nil, nil),
		EventDefs:    indices.NewDefinitionIndex(tokens.Event, 0, nil, nil),
		FieldDefs:    indices.NewDefinitionIndex(tokens.Field, 0, nil, nil),
		MethodDefs:   indices.NewDefinitionIndex(tokens.MethodDef, 0, nil, nil),
		PropertyDefs: indices.NewDefinitionIndex(tokens.Property, 0, nil, nil),
		Params:       indices.NewSimpleIndex(tokens.Param, 0),

		EventOwners:    map[oracle.SymbolID]tokens.RowID{},
		FieldOwners:    map[oracle.SymbolID]tokens.RowID{},
		MethodOwners:   map[oracle.SymbolID]tokens.RowID{},
		PropertyOwners: map[oracle.SymbolID]tokens.RowID{},
	}
}

func TestBuildLogOrdersRefsBeforeTypeDefsBeforeStructuredMembers(t *testing.T) {
	in := emptyInputs()
	in.AssemblyRef = Range{PreviousSize: 0, DeltaSize: 1}

	typeID := sym(oracle.TypeSymbol, "T:A")
	typeRow, err := in.TypeDefs.Add(typeID)
	require.NoError(t, err)

	fieldID := sym(oracle.FieldSymbol, "F:A.f")
	fieldRow, err := in.FieldDefs.Add(fieldID)
	require.NoError(t, err)
	in.FieldOwners[fieldID] = typeRow

	rows, err := BuildLog(in)
	require.NoError(t, err)

	assert.Equal(t, tokens.AssemblyRef, rows[0].Token.Table())
	assert.Equal(t, Default, rows[0].Func)

	// TypeDef row follows all reference ranges.
	typeDefIdx := indexOfTable(rows, tokens.TypeDef)
	assert.Greater(t, typeDefIdx, 0)
	assert.Equal(t, tokens.Make(tokens.TypeDef, typeRow), rows[typeDefIdx].Token)

	// AddField token (owner TypeDef) precedes the Field row itself.
	addFieldIdx := indexOfFuncAndTable(rows, AddField, tokens.TypeDef)
	fieldRowIdx := indexOfToken(rows, tokens.Make(tokens.Field, fieldRow))
	assert.Greater(t, fieldRowIdx, addFieldIdx)
}

func TestBuildLogParameterPairsEmitAddParameterThenParamRow(t *testing.T) {
	in := emptyInputs()
	methodID := sym(oracle.MethodSymbol, "M:A.Do")
	paramID := sym(oracle.ParamSymbol, "P:A.Do.x")

	methodRow, err := in.MethodDefs.Add(methodID)
	require.NoError(t, err)
	in.MethodOwners[methodID] = 1

	paramRow, err := in.Params.Add(paramID)
	require.NoError(t, err)

	in.ParamPairs = []change.MethodParamPair{{Method: methodID, Param: paramID}}

	rows, err := BuildLog(in)
	require.NoError(t, err)

	addParamIdx := indexOfFuncAndTable(rows, AddParameter, tokens.MethodDef)
	require.GreaterOrEqual(t, addParamIdx, 0)
	assert.Equal(t, tokens.Make(tokens.MethodDef, methodRow), rows[addParamIdx].Token)
	assert.Equal(t, tokens.Make(tokens.Param, paramRow), rows[addParamIdx+1].Token)
}

func TestBuildLogUnresolvableParamPairErrors(t *testing.T) {
	in := emptyInputs()
	in.ParamPairs = []change.MethodParamPair{
		{Method: sym(oracle.MethodSymbol, "M:Missing"), Param: sym(oracle.ParamSymbol, "P:Missing")},
	}
	_, err := BuildLog(in)
	assert.Error(t, err)
}

func TestBuildLogMissingOwnerIsInvariantViolation(t *testing.T) {
	in := emptyInputs()
	fieldID := sym(oracle.FieldSymbol, "F:A.f")
	_, err := in.FieldDefs.Add(fieldID)
	require.NoError(t, err)
	// deliberately omit in.FieldOwners[fieldID]

	_, err = BuildLog(in)
	assert.Error(t, err)
}

func TestBuildMapSortedAndDeduplicated(t *testing.T) {
	in := emptyInputs()
	in.AssemblyRef = Range{PreviousSize: 5, DeltaSize: 2}

	typeID := sym(oracle.TypeSymbol, "T:A")
	_, err := in.TypeDefs.Add(typeID)
	require.NoError(t, err)

	toks, err := BuildMap(in)
	require.NoError(t, err)

	for i := 1; i < len(toks); i++ {
		assert.Less(t, toks[i-1], toks[i])
	}
}

func TestBuildMapDuplicateTokenIsInvariantViolation(t *testing.T) {
	in := emptyInputs()
	// Force the same table+row range to be added twice via Linear ranges
	// pointing at the same rows as an explicit AssemblyRef range would be
	// artificial; instead exercise the guard directly through two identical
	// EventMap rows list entries.
	in.EventMapRows = []tokens.RowID{1, 1}
	_, err := BuildMap(in)
	assert.Error(t, err)
}

func indexOfTable(rows []LogRow, table tokens.Table) int {
	for i, r := range rows {
		if r.Token.Table() == table {
			return i
		}
	}
	return -1
}

func indexOfFuncAndTable(rows []LogRow, fn FuncCode, table tokens.Table) int {
	for i, r := range rows {
		if r.Func == fn && r.Token.Table() == table {
			return i
		}
	}
	return -1
}

func indexOfToken(rows []LogRow, tok tokens.Token) int {
	for i, r := range rows {
		if r.Token == tok {
			return i
		}
	}
	return -1
}

func TestFuncCodeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "AddField", AddField.String())
	assert.Equal(t, "AddParameter", AddParameter.String())
	assert.Equal(t, "Unknown", FuncCode(99).String())
}
