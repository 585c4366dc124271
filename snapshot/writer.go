package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"
)

const fileName = "options.snap"

type Writer struct {
	Dir string
}

// Write dumps the given entries under the writer's directory,
// stamped with the event sequence current at export time.
func (w *Writer) Write(seq uint64, entries []Entry) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(w.Dir, fileName))
	if err != nil {
		return err
	}
	defer f.Close()

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Entries: entries,
	}
	return gob.NewEncoder(f).Encode(&s)
}
