package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier tells other tabs/processes that shared data changed.
type Notifier interface {
	Notify(ctx context.Context, eventType, correlationID string, payload any) error
}

// NewEnvelope wraps payload into a versioned envelope with a fresh id.
func NewEnvelope(producer, eventType, correlationID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

// Decode unpacks the payload of an envelope.
func Decode[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", env.EventType, err)
	}
	return t, nil
}

// Bus is an in-process Notifier. Handlers run synchronously on the
// notifying goroutine.
type Bus struct {
	producer string

	mu   sync.RWMutex
	subs map[string][]func(Envelope)
}

func NewBus(producer string) *Bus {
	return &Bus{producer: producer, subs: map[string][]func(Envelope){}}
}

func (b *Bus) Subscribe(eventType string, fn func(Envelope)) {
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], fn)
	b.mu.Unlock()
}

func (b *Bus) Notify(ctx context.Context, eventType, correlationID string, payload any) error {
	env, err := NewEnvelope(b.producer, eventType, correlationID, payload)
	if err != nil {
		return err
	}
	b.mu.RLock()
	fns := append([]func(Envelope){}, b.subs[eventType]...)
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(env)
	}
	return nil
}
