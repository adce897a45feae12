package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies the back-office staff member whose action produced the event.
type ActorRef struct {
	StaffID string `json:"staffId"`
	Source  string `json:"source,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
