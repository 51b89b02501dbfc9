package sortutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStablePathSortOrdersLexicographically(t *testing.T) {
	in := []string{"b", "a", "c"}
	got := StablePathSort(in)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestStablePathSortDoesNotMutateInput(t *testing.T) {
	in := []string{"z", "a"}
	_ = StablePathSort(in)
	assert.Equal(t, []string{"z", "a"}, in)
}
