package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUTF8LFConvertsCRLFAndCR(t *testing.T) {
	got := NormalizeUTF8LF([]byte("a\r\nb\rc\n"))
	assert.Equal(t, "a\nb\nc\n", string(got))
}

func TestNormalizeUTF8LFReplacesInvalidBytes(t *testing.T) {
	got := NormalizeUTF8LF([]byte{'a', 0xff, 'b'})
	assert.Equal(t, "a�b", string(got))
}

func TestEnsureTrailingLFAddsWhenMissing(t *testing.T) {
	assert.Equal(t, "abc\n", string(EnsureTrailingLF([]byte("abc"))))
}

func TestEnsureTrailingLFNoopWhenPresent(t *testing.T) {
	assert.Equal(t, "abc\n", string(EnsureTrailingLF([]byte("abc\n"))))
}

func TestEnsureTrailingLFEmptyInput(t *testing.T) {
	assert.Equal(t, []byte{}, EnsureTrailingLF([]byte{}))
}
