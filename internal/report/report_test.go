package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deltawriter/internal/baseline"
	"deltawriter/internal/emit"
	"deltawriter/internal/enc"
	"deltawriter/internal/refs"
	"deltawriter/internal/tokens"
)

func TestSummaryListsNonZeroTableDeltasOnly(t *testing.T) {
	res := &emit.Result{
		NextBaseline: &baseline.Baseline{Ordinal: 3},
		TableDeltaSizes: map[tokens.Table]int{
			tokens.TypeDef:   1,
			tokens.MethodDef: 0,
			tokens.Field:     2,
		},
	}

	out := Summary(res)
	assert.Contains(t, out, "generation 3")
	assert.Contains(t, out, "TypeDef")
	assert.Contains(t, out, "Field")
	assert.NotContains(t, out, "MethodDef")
}

func TestSummaryReportsEncLogAndEncMapCounts(t *testing.T) {
	res := &emit.Result{
		NextBaseline: &baseline.Baseline{},
		TableDeltaSizes: map[tokens.Table]int{},
		EncLog: []enc.LogRow{
			{Token: tokens.Make(tokens.TypeDef, 1)},
			{Token: tokens.Make(tokens.Field, 5)},
			{Token: tokens.Make(tokens.Field, 6)},
		},
		EncMap: []tokens.Token{tokens.Make(tokens.TypeDef, 1)},
	}

	out := Summary(res)
	assert.Contains(t, out, "EncLog: 3 rows")
	assert.Contains(t, out, "Field")
	assert.Contains(t, out, "EncMap: 1 tokens")
}

func TestSummaryOmitsChangedMethodsAndDiagnosticsWhenEmpty(t *testing.T) {
	res := &emit.Result{
		NextBaseline:    &baseline.Baseline{},
		TableDeltaSizes: map[tokens.Table]int{},
	}
	out := Summary(res)
	assert.NotContains(t, out, "changed methods")
	assert.NotContains(t, out, "diagnostics:")
}

func TestSummarySortsDiagnosticsBySimpleName(t *testing.T) {
	res := &emit.Result{
		NextBaseline:    &baseline.Baseline{},
		TableDeltaSizes: map[tokens.Table]int{},
		ChangedMethods:  []tokens.Token{tokens.Make(tokens.MethodDef, 1)},
		Diagnostics: []refs.Diagnostic{
			{SimpleName: "Zeta", AssemblyDisplayName: "A"},
			{SimpleName: "Alpha", AssemblyDisplayName: "B"},
		},
	}

	out := Summary(res)
	assert.Contains(t, out, "changed methods (sequence points retained): 1")
	alphaIdx := indexOf(out, "Alpha")
	zetaIdx := indexOf(out, "Zeta")
	assert.Greater(t, zetaIdx, alphaIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestLocalSignatureDiffProducesUnifiedHunk(t *testing.T) {
	out := LocalSignatureDiff("M::Do", "int32 V_0\n", "string V_0\n")
	assert.Contains(t, out, "-int32 V_0")
	assert.Contains(t, out, "+string V_0")
}

func TestLocalSignatureDiffEmptyForIdenticalListings(t *testing.T) {
	out := LocalSignatureDiff("M::Do", "int32 V_0\n", "int32 V_0\n")
	assert.Empty(t, out)
}
