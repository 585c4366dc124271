// Package bus is a small in-process pub/sub used for option-change
// and asset-registration notifications. Delivery is synchronous and
// in subscription order; cross-process fan-out goes through the
// Kafka pipeline instead.
package bus

import "sync"

// Handler receives every event published on its topic.
type Handler func(event any)

type subscriber struct {
	id int
	fn Handler
}

// Bus routes events by topic name. The zero value is not usable;
// call New.
type Bus struct {
	mu     sync.Mutex
	nextID int
	topics map[string][]subscriber
}

func New() *Bus {
	return &Bus{topics: make(map[string][]subscriber)}
}

// Subscribe registers fn for topic and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.topics[topic]
		for i, s := range subs {
			if s.id == id {
				b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers event to every current subscriber of topic, in
// subscription order, on the calling goroutine. Handlers must not
// re-enter Publish on the same topic.
func (b *Bus) Publish(topic string, event any) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(event)
	}
}
