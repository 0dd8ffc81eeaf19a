package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ariefcatur/pandagamers-storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

func headers(env events.Envelope) []kafka.Header {
	return []kafka.Header{
		{Key: HeaderEventType, Value: []byte(env.EventType)},
		{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(env.EventVersion))},
	}
}

// DecodeEnvelope reads the envelope carried in a message value.
func DecodeEnvelope(m kafka.Message) (events.Envelope, error) {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return env, fmt.Errorf("decode envelope at %s/%d@%d: %w", m.Topic, m.Partition, m.Offset, err)
	}
	return env, nil
}
