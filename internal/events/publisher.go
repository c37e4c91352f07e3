package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
)

// DefaultTopic is where location-check events land unless configured.
const DefaultTopic = "parking.checks"

// Publisher emits one Kafka event per location check for downstream
// consumers (analytics, municipal-data reconciliation). Publishing is
// best-effort; a broker outage never fails a user request.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher writing to the given brokers/topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishCheck sends a check log as a JSON message. Messages are keyed
// by the nearest spot id so per-spot consumers read in order.
func (p *Publisher) PublishCheck(ctx context.Context, entry domain.CheckLog) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("events: failed to marshal check event: %w", err)
	}

	var key []byte
	if entry.NearestSpotID != nil {
		key = []byte(strconv.Itoa(*entry.NearestSpotID))
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("events: failed to publish check event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
