package bus

import "testing"

func TestPublishSubscribe(t *testing.T) {
	b := New()

	var got []any
	b.Subscribe("opt", func(e any) { got = append(got, e) })
	b.Publish("opt", 1)
	b.Publish("opt", 2)
	b.Publish("other", 3)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestDeliveryOrder(t *testing.T) {
	b := New()

	var order []int
	b.Subscribe("t", func(any) { order = append(order, 1) })
	b.Subscribe("t", func(any) { order = append(order, 2) })
	b.Publish("t", nil)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected subscription order, got %v", order)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	count := 0
	cancel := b.Subscribe("t", func(any) { count++ })
	b.Publish("t", nil)
	cancel()
	cancel() // second cancel is a no-op
	b.Publish("t", nil)

	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
}
