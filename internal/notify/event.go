// Package notify provides the publish/subscribe channel that carries
// reminder events from the scheduler's fire path to connected clients.
//
// Publishing is fire-and-forget: events land on a bounded queue consumed
// by a dedicated delivery worker, so the timer-firing path never blocks
// on subscriber I/O. Subscribers see only events published while they are
// connected; no backlog is replayed.
package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventTypeTaskReminder is published when a task's due instant arrives.
const EventTypeTaskReminder = "task_reminder"

// ReminderPayload is the payload of a task_reminder event.
type ReminderPayload struct {
	Title string `json:"title"`
	Time  string `json:"time"`
}

// Event is a single notification delivered to subscribers.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the kind of notification
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}
