// Package broadcaster drains the change-event outbox into Kafka.
// Records survive in pebble until the broker acknowledges them, so a
// crash between send and ack means redelivery, never loss.
package broadcaster

import (
	"context"
	"encoding/binary"
	"log"
	"time"

	"github.com/IBM/sarama"

	"mimir/infra/kv"
)

type Broadcaster struct {
	store    *kv.Store
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
}

// New connects a broadcaster to the given brokers.
func New(
	store *kv.Store,
	brokers []string,
	topic string,
) (*Broadcaster, error) {

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithProducer(store, producer, topic), nil
}

// NewWithProducer wires an existing producer; used by tests and by
// callers that manage the Kafka client themselves.
func NewWithProducer(
	store *kv.Store,
	producer sarama.SyncProducer,
	topic string,
) *Broadcaster {
	return &Broadcaster{
		store:    store,
		producer: producer,
		topic:    topic,
		interval: 250 * time.Millisecond,
	}
}

// Start runs the drain loop until ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				b.drainOnce()
			}
		}
	}()
}

// drainOnce walks pending records: mark SENT, publish, mark ACKED.
// A failed send leaves the record SENT; the next tick retries it.
func (b *Broadcaster) drainOnce() {
	_ = b.store.ScanPending(func(rec kv.EventRecord) error {
		if err := b.store.MarkSent(rec.Seq); err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, rec.Seq)
		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.ByteEncoder(key),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			log.Printf("[broadcaster] send seq=%d failed: %v", rec.Seq, err)
			return nil // retry on the next tick
		}

		return b.store.MarkAcked(rec.Seq)
	})
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
