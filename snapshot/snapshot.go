// Package snapshot exports and imports the full options table as a
// single gob file, for backup and for seeding fresh installs.
package snapshot

import "time"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Entries []Entry
}

// Entry is one persisted option value.
type Entry struct {
	Plugin string
	Key    string
	Value  any
}
