package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifiedProducesHunkForChangedLine(t *testing.T) {
	a := []byte("line1\nline2\nline3\n")
	b := []byte("line1\nCHANGED\nline3\n")

	body, oversize := Unified("old", "new", a, b, Options{})
	assert.False(t, oversize)
	assert.Contains(t, body, "--- old")
	assert.Contains(t, body, "+++ new")
	assert.Contains(t, body, "-line2")
	assert.Contains(t, body, "+CHANGED")
}

func TestUnifiedIdenticalInputsProduceEmptyBody(t *testing.T) {
	a := []byte("same\n")
	body, oversize := Unified("old", "new", a, a, Options{})
	assert.False(t, oversize)
	assert.Empty(t, strings.TrimSpace(body))
}

func TestUnifiedRespectsMaxBytesGuardrail(t *testing.T) {
	a := []byte("aaaaaaaaaa")
	b := []byte("bbbbbbbbbb")
	body, oversize := Unified("old", "new", a, b, Options{MaxBytes: 5})
	assert.True(t, oversize)
	assert.Contains(t, body, "diff omitted")
}
