package bundle

import (
	"archive/zip"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltawriter/internal/baseline"
	"deltawriter/internal/emit"
	"deltawriter/internal/enc"
	"deltawriter/internal/tokens"
)

func sampleResult() *emit.Result {
	return &emit.Result{
		EncLog: []enc.LogRow{
			{Token: tokens.Make(tokens.TypeDef, 1), Func: enc.Default},
		},
		EncMap: []tokens.Token{tokens.Make(tokens.TypeDef, 1)},
		NextBaseline: &baseline.Baseline{
			Ordinal:   1,
			EncID:     uuid.New(),
			EncBaseID: uuid.Nil,
		},
		TableDeltaSizes: map[tokens.Table]int{tokens.TypeDef: 1},
	}
}

func TestWriteDeltaProducesExpectedEntries(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "out", "delta.zip")

	require.NoError(t, WriteDelta(zipPath, sampleResult(), "generation 1\n"))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{
		"delta.index.json", "baseline.json", "enclog.json", "encmap.json", "report.txt",
	}, names)
}

func TestWriteDeltaOmitsReportWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "delta.zip")

	require.NoError(t, WriteDelta(zipPath, sampleResult(), ""))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		assert.NotEqual(t, "report.txt", f.Name)
	}
}

func TestWriteDeltaIndexReflectsResultCounts(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "delta.zip")

	res := sampleResult()
	require.NoError(t, WriteDelta(zipPath, res, ""))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	var raw []byte
	for _, f := range zr.File {
		if f.Name != "delta.index.json" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		buf := make([]byte, f.UncompressedSize64)
		_, err = rc.Read(buf)
		rc.Close()
		require.True(t, err == nil || err.Error() == "EOF")
		raw = buf
	}
	require.NotNil(t, raw)

	var idx index
	require.NoError(t, json.Unmarshal(raw, &idx))
	assert.Equal(t, 1, idx.Generation)
	assert.Equal(t, 1, idx.EncLogRows)
	assert.Equal(t, 1, idx.EncMapTokens)
	assert.Equal(t, 1, idx.TableDeltaSizes["TypeDef"])
}

func TestWriteDeltaTimestampsAreFixed(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "delta.zip")
	require.NoError(t, WriteDelta(zipPath, sampleResult(), ""))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	require.NotEmpty(t, zr.File)
	first := zr.File[0].Modified.UTC()
	for _, f := range zr.File {
		assert.Equal(t, first, f.Modified.UTC())
	}
}
