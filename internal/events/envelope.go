// Package events carries the shared event contract: the wire envelope every
// service publishes and consumes, the per-channel payload types, and the
// publisher/dispatcher plumbing on top of the bus port.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EnvelopeVersion = "1.0"

// Metadata correlates events belonging to one saga instance. CorrelationID is
// shared across the whole instance; CausationID is the eventId of the event
// that triggered this one (empty for root events).
type Metadata struct {
	CorrelationID string `json:"correlationId"`
	CausationID   string `json:"causationId,omitempty"`
}

type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Source    string          `json:"source"`
	Data      json.RawMessage `json:"data"`
	Metadata  Metadata        `json:"metadata"`
}

// Build wraps data in a fresh envelope. EventID is unique per call, even for
// semantically duplicate retransmissions; it is not a dedup key. A missing
// correlation id is generated, a supplied one is kept verbatim.
func Build(eventType string, data any, meta Metadata, source string) (*Envelope, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}
	return &Envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Version:   EnvelopeVersion,
		Source:    source,
		Data:      body,
		Metadata:  meta,
	}, nil
}

// Parse decodes a raw bus message. Malformed input yields nil, never an
// error: callers treat nil as "drop silently".
func Parse(raw []byte) *Envelope {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	return &env
}

// Decode unmarshals the envelope payload into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// CausedBy derives the metadata for an event emitted in reaction to e: same
// saga instance, caused by e itself.
func (e *Envelope) CausedBy() Metadata {
	return Metadata{
		CorrelationID: e.Metadata.CorrelationID,
		CausationID:   e.EventID,
	}
}
