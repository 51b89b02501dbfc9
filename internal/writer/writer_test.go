package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deltawriter/internal/oracle"
	"deltawriter/internal/refs"
)

func TestCollectingSinkAccumulatesInOrder(t *testing.T) {
	var sink CollectingSink
	d1 := refs.Diagnostic{SimpleName: "First", Target: oracle.SymbolID{Kind: oracle.MethodSymbol, Key: "M:A"}}
	d2 := refs.Diagnostic{SimpleName: "Second", Target: oracle.SymbolID{Kind: oracle.MethodSymbol, Key: "M:B"}}

	sink.Report(d1)
	sink.Report(d2)

	assert.Equal(t, []refs.Diagnostic{d1, d2}, sink.Diagnostics)
}

func TestCollectingSinkStartsEmpty(t *testing.T) {
	var sink CollectingSink
	assert.Empty(t, sink.Diagnostics)
}
