package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const TypeReviewInserted = "review.inserted"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the dotted event code, e.g. "review.inserted".
	EventType() string

	// Payload returns the JSON-encoded event body.
	Payload() []byte

	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       []byte
	OccurredAt time.Time
}

// NewJSONEvent encodes body as the event payload.
func NewJSONEvent(eventType string, body interface{}) (BaseEvent, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return BaseEvent{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}, nil
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() []byte {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Decode unmarshals the payload into v.
func Decode(e Event, v interface{}) error {
	if err := json.Unmarshal(e.Payload(), v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.EventType(), err)
	}
	return nil
}
