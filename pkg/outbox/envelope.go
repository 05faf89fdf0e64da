package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/enums"
)

// CurrentEnvelopeVersion is written by Emit. Readers accept any version up
// to it.
const CurrentEnvelopeVersion = 1

// ErrEmptyEventData is returned for envelopes whose data is missing or null.
var ErrEmptyEventData = errors.New("envelope carries no data")

// ActorRef is the user whose action produced the event.
type ActorRef struct {
	UserID uuid.UUID      `json:"userId"`
	Role   enums.UserRole `json:"role,omitempty"`
}

// PayloadEnvelope wraps every outbox_events.payload document.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload and rejects envelopes this build
// cannot interpret.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version > CurrentEnvelopeVersion {
		return PayloadEnvelope{}, fmt.Errorf("envelope version %d is newer than %d", env.Version, CurrentEnvelopeVersion)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return PayloadEnvelope{}, ErrEmptyEventData
	}
	return env, nil
}
