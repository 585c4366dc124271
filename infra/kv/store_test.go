package kv

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOptionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.GetOption("anim", "showFPS"); err != nil || ok {
		t.Fatalf("expected missing option, got ok=%v err=%v", ok, err)
	}

	if err := s.SetOption("anim", "showFPS", []byte("1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := s.GetOption("anim", "showFPS")
	if err != nil || !ok || string(val) != "1" {
		t.Fatalf("get: val=%q ok=%v err=%v", val, ok, err)
	}
}

func TestScanOptionsIsPluginScoped(t *testing.T) {
	s := openTestStore(t)

	_ = s.SetOption("anim", "a", []byte("x"))
	_ = s.SetOption("anim", "b", []byte("y"))
	_ = s.SetOption("graph", "a", []byte("z"))

	got := map[string]string{}
	err := s.ScanOptions("anim", func(key string, val []byte) error {
		got[key] = string(val)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 || got["a"] != "x" || got["b"] != "y" {
		t.Fatalf("unexpected scan result: %v", got)
	}
}

func TestAssetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.PutAsset(7, []byte("frame")); err != nil {
		t.Fatalf("put: %v", err)
	}
	val, ok, err := s.GetAsset(7)
	if err != nil || !ok || string(val) != "frame" {
		t.Fatalf("get: val=%q ok=%v err=%v", val, ok, err)
	}

	if err := s.DeleteAsset(7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.GetAsset(7); ok {
		t.Error("asset still present after delete")
	}
}

func TestOutboxStateTransitions(t *testing.T) {
	s := openTestStore(t)

	if err := s.AppendEvent(1, []byte("ev-1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	rec, err := s.Event(1)
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if rec.State != StateNew || rec.Retries != 0 || string(rec.Payload) != "ev-1" {
		t.Fatalf("unexpected fresh record: %+v", rec)
	}

	if err := s.MarkSent(1); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	rec, _ = s.Event(1)
	if rec.State != StateSent || rec.Retries != 1 || rec.LastAttempt == 0 {
		t.Fatalf("unexpected sent record: %+v", rec)
	}

	if err := s.MarkAcked(1); err != nil {
		t.Fatalf("mark acked: %v", err)
	}
	rec, _ = s.Event(1)
	if rec.State != StateAcked {
		t.Fatalf("unexpected acked record: %+v", rec)
	}
}

func TestScanPendingSkipsAcked(t *testing.T) {
	s := openTestStore(t)

	_ = s.AppendEvent(1, []byte("a"))
	_ = s.AppendEvent(2, []byte("b"))
	_ = s.AppendEvent(3, []byte("c"))
	_ = s.MarkSent(2)
	_ = s.MarkAcked(2)

	var seqs []uint64
	err := s.ScanPending(func(rec EventRecord) error {
		seqs = append(seqs, rec.Seq)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 3 {
		t.Fatalf("expected [1 3], got %v", seqs)
	}
}

func TestMaxEventSeq(t *testing.T) {
	s := openTestStore(t)

	if seq, err := s.MaxEventSeq(); err != nil || seq != 0 {
		t.Fatalf("empty outbox: seq=%d err=%v", seq, err)
	}

	_ = s.AppendEvent(5, nil)
	_ = s.AppendEvent(12, nil)
	if seq, err := s.MaxEventSeq(); err != nil || seq != 12 {
		t.Fatalf("expected 12, got seq=%d err=%v", seq, err)
	}
}
