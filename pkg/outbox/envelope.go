package outbox

import (
	"encoding/json"
	"time"
)

// CurrentVersion is the envelope version written by Emit when the event leaves it unset.
const CurrentVersion = 1

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Source     string          `json:"source,omitempty"`
	Data       json.RawMessage `json:"data"`
}
