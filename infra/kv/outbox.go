package kv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type EventState uint8

const (
	StateNew EventState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s EventState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

// EventRecord is one outbox entry awaiting broadcast.
type EventRecord struct {
	Seq         uint64
	State       EventState
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// binary encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeEvent(r EventRecord) []byte {
	buf := make([]byte, 1+4+8+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[13:], r.Payload)
	return buf
}

func decodeEvent(seq uint64, b []byte) (EventRecord, error) {
	if len(b) < 13 {
		return EventRecord{}, errors.New("invalid event record length")
	}
	return EventRecord{
		Seq:         seq,
		State:       EventState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte{}, b[13:]...),
	}, nil
}

// -------------------- Outbox API --------------------

// AppendEvent inserts a NEW outbox entry (called by the registry
// service on every change).
func (s *Store) AppendEvent(seq uint64, payload []byte) error {
	rec := EventRecord{
		Seq:     seq,
		State:   StateNew,
		Payload: payload,
	}
	return s.db.Set(eventKey(seq), encodeEvent(rec), pebble.Sync)
}

// Event returns the current record for a sequence number.
func (s *Store) Event(seq uint64) (EventRecord, error) {
	val, closer, err := s.db.Get(eventKey(seq))
	if err != nil {
		return EventRecord{}, err
	}
	defer closer.Close()

	return decodeEvent(seq, val)
}

// MarkSent records a send attempt, bumping the retry counter.
func (s *Store) MarkSent(seq uint64) error {
	return s.updateEvent(seq, StateSent)
}

// MarkAcked records broker acknowledgement.
func (s *Store) MarkAcked(seq uint64) error {
	return s.updateEvent(seq, StateAcked)
}

func (s *Store) updateEvent(seq uint64, state EventState) error {
	rec, err := s.Event(seq)
	if err != nil {
		return err
	}
	rec.State = state
	if state == StateSent {
		rec.Retries++
	}
	rec.LastAttempt = time.Now().UnixNano()
	return s.db.Set(eventKey(seq), encodeEvent(rec), pebble.Sync)
}

// DeleteEvent removes ACKED records (cleanup).
func (s *Store) DeleteEvent(seq uint64) error {
	return s.db.Delete(eventKey(seq), pebble.Sync)
}

// ScanPending iterates records still awaiting acknowledgement
// (NEW or SENT), in sequence order. The broadcaster drives this.
func (s *Store) ScanPending(fn func(rec EventRecord) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("evt/"),
		UpperBound: []byte("evt/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseEventKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeEvent(seq, iter.Value())
		if err != nil {
			return err
		}
		if rec.State != StateNew && rec.State != StateSent {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// MaxEventSeq returns the highest outbox sequence on disk, for
// sequencer recovery after restart. Zero means an empty outbox.
func (s *Store) MaxEventSeq() (uint64, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("evt/"),
		UpperBound: []byte("evt/~"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return parseEventKey(iter.Key())
}

// -------------------- Keys --------------------

func eventKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("evt/%020d", seq))
}

func parseEventKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("evt/"))), "%d", &seq)
	return seq, err
}
