package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID  uuid.UUID  `json:"userId"`
	SalonID *uuid.UUID `json:"salonId,omitempty"`
	Role    string     `json:"role,omitempty"`
}

// PayloadEnvelope is the payload structure stored in outbox_events. Consumers
// downstream of the publisher decode this before touching Data, so its shape
// only changes by bumping Version.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// ParseEnvelope decodes a stored payload and rejects envelopes without an
// event id, which would break downstream deduplication.
func ParseEnvelope(payload []byte) (*PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventID == "" {
		return nil, fmt.Errorf("envelope missing event id")
	}
	return &env, nil
}
