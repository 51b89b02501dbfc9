package baseline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const fileName = "baseline.json"

// Load reads the baseline stored at <dir>/baseline.json. If the file does
// not exist, it returns (nil, nil) so callers can treat "no previous
// baseline" as the generation-0 case without branching on errors.
func Load(dir string) (*Baseline, error) {
	path := filepath.Join(dir, fileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out Baseline
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save writes b atomically to <dir>/baseline.json: the encode happens into a
// temp file in the same directory, which is then renamed into place so
// readers never observe a partially-written baseline.
func Save(dir string, b *Baseline) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, f, err := createTempFile(dir, fileName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, fileName))
}

// createTempFile creates a temporary file in dir with a name derived from
// base, returning its path and an *os.File ready for writing.
func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}
