package events

import "time"

// Event is the contract every bus event satisfies. The type string doubles as
// the NATS subject suffix, so it must stay stable across releases.
type Event interface {
	// EventType returns the unique code for this event, e.g. "ANSWER_COMPLETED".
	EventType() string

	// Payload returns the serializable data carried by the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation concrete events embed or return.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
