// Package kafka wraps the low-level writer used when a component
// publishes change events directly, bypassing the durable outbox.
package kafka

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// SendEvent publishes one change event keyed by its sequence number,
// so events for the same stream land on the same partition in order.
func (p *Producer) SendEvent(
	ctx context.Context,
	seq uint64,
	payload []byte,
) error {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: payload,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
