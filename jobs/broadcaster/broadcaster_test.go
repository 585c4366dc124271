package broadcaster

import (
	"errors"
	"testing"

	"github.com/IBM/sarama/mocks"

	"mimir/infra/kv"
)

func openTestStore(t *testing.T) *kv.Store {
	t.Helper()
	s, err := kv.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDrainAcksDeliveredEvents(t *testing.T) {
	store := openTestStore(t)
	_ = store.AppendEvent(1, []byte("ev-1"))
	_ = store.AppendEvent(2, []byte("ev-2"))

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	b := NewWithProducer(store, producer, "mimir.events")
	b.drainOnce()

	for _, seq := range []uint64{1, 2} {
		rec, err := store.Event(seq)
		if err != nil {
			t.Fatalf("event %d: %v", seq, err)
		}
		if rec.State != kv.StateAcked {
			t.Errorf("seq %d state = %v, want ACKED", seq, rec.State)
		}
	}
}

func TestDrainRetriesFailedSend(t *testing.T) {
	store := openTestStore(t)
	_ = store.AppendEvent(1, []byte("ev-1"))

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	b := NewWithProducer(store, producer, "mimir.events")
	b.drainOnce()

	rec, err := store.Event(1)
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if rec.State != kv.StateSent || rec.Retries != 1 {
		t.Fatalf("after failure: state=%v retries=%d, want SENT/1", rec.State, rec.Retries)
	}

	// Next tick picks the SENT record back up.
	producer.ExpectSendMessageAndSucceed()
	b.drainOnce()

	rec, _ = store.Event(1)
	if rec.State != kv.StateAcked || rec.Retries != 2 {
		t.Fatalf("after retry: state=%v retries=%d, want ACKED/2", rec.State, rec.Retries)
	}
}
