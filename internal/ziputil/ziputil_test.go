package ziputil

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePathNormalizesAndStripsTraversal(t *testing.T) {
	assert.Equal(t, "a/b", SanitizePath(`a\b`))
	assert.Equal(t, "a/b", SanitizePath("/a/b"))
	assert.Equal(t, "b", SanitizePath("../b"))
	assert.Equal(t, "a/c", SanitizePath("a/../a/./c"))
	assert.Equal(t, "entry", SanitizePath(".."))
}

func TestSanitizePathStripsWindowsDriveLetter(t *testing.T) {
	assert.Equal(t, "path/to/file", SanitizePath(`C:\path\to\file`))
}

func TestWriteJSONAndWriteTextRoundTripThroughZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	require.NoError(t, WriteJSON(zw, "data.json", map[string]int{"a": 1}))
	require.NoError(t, WriteText(zw, "notes.txt", []byte("hello")))
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	for _, f := range zr.File {
		assert.Equal(t, FixedZipTime, f.Modified.UTC())
	}
}
