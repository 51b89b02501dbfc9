// Package config loads the delta writer's recognized options (§6): which
// synthesized locals get debug names, and the fixed compression setting.
// It follows the teacher pack's TOML-manifest pattern (surge.toml in
// vovakirdan-surge/cmd/surge/project_manifest.go) rather than hand-rolled
// flag parsing.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// DebugInformation controls which synthesized locals receive slot names
// (LocalSlot.Name) in local-signature output.
type DebugInformation int

const (
	DebugFull DebugInformation = iota
	DebugPdbOnly
	DebugNone
)

func (d DebugInformation) String() string {
	switch d {
	case DebugFull:
		return "full"
	case DebugPdbOnly:
		return "pdbonly"
	case DebugNone:
		return "none"
	default:
		return "unknown"
	}
}

func (d *DebugInformation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "full", "":
		*d = DebugFull
	case "pdbonly":
		*d = DebugPdbOnly
	case "none":
		*d = DebugNone
	default:
		return fmt.Errorf("config: unknown debug_information %q", text)
	}
	return nil
}

// Config is the delta writer's recognized configuration surface.
type Config struct {
	DebugInformation DebugInformation `toml:"debug_information"`

	// CompressMetadataStream is fixed false for deltas (§6): the #~ stream
	// is never compressed for an EnC generation. It is exposed so a config
	// file that gets this wrong fails loudly at Validate rather than
	// silently producing an unreadable delta.
	CompressMetadataStream bool `toml:"compress_metadata_stream"`
}

// Default returns the writer's out-of-the-box configuration.
func Default() Config {
	return Config{DebugInformation: DebugFull}
}

// Load reads and decodes a TOML config file, starting from Default() so an
// omitted key keeps its default value.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate enforces the fixed invariants §6 documents as "recognized
// options" rather than free choices.
func (c Config) Validate() error {
	if c.CompressMetadataStream {
		return fmt.Errorf("config: compress_metadata_stream must be false for delta emission")
	}
	return nil
}
