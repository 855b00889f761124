package events

import (
	"encoding/json"
	"time"
)

type Envelope struct {
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload for the wire. Fails only if the payload itself
// cannot be marshalled.
func NewEnvelope(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	})
}
