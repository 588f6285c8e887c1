// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package cluster

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Kind says how peers resolve an envelope's Target.
type Kind string

const (
	// KindDirect targets a user id; delivered by the instance that holds it.
	KindDirect Kind = "direct"

	// KindRoom targets a room id; delivered to every local member.
	KindRoom Kind = "room"

	// KindClaim announces a registration; peers release older local bindings.
	KindClaim Kind = "claim"
)

// ErrInvalidEnvelope is returned for envelopes that cannot be routed.
var ErrInvalidEnvelope = errors.New("invalid cluster envelope")

// Envelope is the message exchanged between relay instances.
type Envelope struct {
	Origin string          `json:"origin"`
	Kind   Kind            `json:"kind"`
	Target string          `json:"target"`
	Event  string          `json:"event,omitempty"`
	Frame  json.RawMessage `json:"frame,omitempty"`
	At     int64           `json:"at"` // UnixNano at the origin
}

// Validate checks that the envelope carries what its kind needs.
func (e *Envelope) Validate() error {
	if e.Origin == "" || e.Target == "" {
		return fmt.Errorf("%w: origin and target are required", ErrInvalidEnvelope)
	}
	switch e.Kind {
	case KindDirect, KindRoom:
		if e.Event == "" || len(e.Frame) == 0 {
			return fmt.Errorf("%w: %s envelope needs event and frame", ErrInvalidEnvelope, e.Kind)
		}
	case KindClaim:
		if e.At == 0 {
			return fmt.Errorf("%w: claim needs a timestamp", ErrInvalidEnvelope)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEnvelope, e.Kind)
	}
	return nil
}

// MarshalEnvelope serializes e.
func MarshalEnvelope(e *Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// UnmarshalEnvelope parses and validates an envelope.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
