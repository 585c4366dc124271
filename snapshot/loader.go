package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
)

// Load reads a previously written snapshot. A missing file is not an
// error: the zero snapshot comes back, matching a fresh install.
func Load(dir string) (Snapshot, error) {
	f, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		return Snapshot{}, nil // snapshot optional
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
