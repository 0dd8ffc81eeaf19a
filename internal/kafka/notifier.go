package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/pandagamers-storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

type publisher interface {
	Publish(key, value []byte, headers ...kafka.Header)
}

// Notifier publishes change events with one async producer per topic.
type Notifier struct {
	producer string
	topics   map[string]publisher
}

func NewNotifier(producer string, orders, products *Producer) *Notifier {
	return &Notifier{
		producer: producer,
		topics: map[string]publisher{
			events.TopicOrdersUpdated:   orders,
			events.TopicProductsUpdated: products,
		},
	}
}

func (n *Notifier) Notify(ctx context.Context, eventType, correlationID string, payload any) error {
	p, ok := n.topics[events.TopicFor(eventType)]
	if !ok {
		return fmt.Errorf("no topic for event %q", eventType)
	}
	env, err := events.NewEnvelope(n.producer, eventType, correlationID, payload)
	if err != nil {
		return err
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	key := correlationID
	if key == "" {
		key = env.EventID
	}
	p.Publish(events.PartitionKey(key), b, headers(env)...)
	return nil
}
