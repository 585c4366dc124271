package sequence

import "sync/atomic"

// Sequencer hands out strictly monotonic change-event sequence
// numbers. Every outbox entry carries one, so event ordering is
// stable across restarts.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer starting from a given value.
// On fresh start -> start = 0
// On recovery -> start = highest sequence found in the outbox
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next event sequence number.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset sets the sequencer to a specific value. Only used after
// outbox recovery.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
