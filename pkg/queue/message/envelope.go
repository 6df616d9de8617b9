// Package message defines the JSON envelope for run events.
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// TypeReductionCompleted is published once per finished run with a report.Report payload.
const TypeReductionCompleted = "reduction.completed"

const currentVersion = 1

type Envelope struct {
	Type    string          `json:"type"`
	Version int             `json:"version"`
	ID      string          `json:"id,omitempty"`
	TS      string          `json:"ts,omitempty"` // RFC 3339
	Data    json.RawMessage `json:"data"`
}

// New wraps payload in an envelope of the given type.
func New(msgType, id string, ts time.Time, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	return &Envelope{
		Type:    msgType,
		Version: currentVersion,
		ID:      id,
		TS:      ts.UTC().Format(time.RFC3339),
		Data:    data,
	}, nil
}

// Open decodes an envelope without decoding its payload.
func Open(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	return &env, nil
}

// Decode unmarshals the payload into v after checking the message type.
func (e *Envelope) Decode(msgType string, v any) error {
	if e.Type != msgType {
		return fmt.Errorf("unexpected message type %q, want %q", e.Type, msgType)
	}
	return json.Unmarshal(e.Data, v)
}
