package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsDebugFullAndCompressionOff(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DebugFull, cfg.DebugInformation)
	assert.False(t, cfg.CompressMetadataStream)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsCompressedMetadataStream(t *testing.T) {
	cfg := Config{CompressMetadataStream: true}
	assert.Error(t, cfg.Validate())
}

func TestDebugInformationUnmarshalText(t *testing.T) {
	var d DebugInformation
	assert.NoError(t, d.UnmarshalText([]byte("pdbonly")))
	assert.Equal(t, DebugPdbOnly, d)

	assert.NoError(t, d.UnmarshalText([]byte("")))
	assert.Equal(t, DebugFull, d)

	assert.Error(t, d.UnmarshalText([]byte("bogus")))
}

func TestDebugInformationString(t *testing.T) {
	assert.Equal(t, "full", DebugFull.String())
	assert.Equal(t, "pdbonly", DebugPdbOnly.String())
	assert.Equal(t, "none", DebugNone.String())
	assert.Equal(t, "unknown", DebugInformation(99).String())
}

func TestLoadDecodesTOMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("debug_information = \"none\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DebugNone, cfg.DebugInformation)
	assert.False(t, cfg.CompressMetadataStream)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
