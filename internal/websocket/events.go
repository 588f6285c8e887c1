// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package websocket

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Inbound event names.
const (
	EventRegister          = "register"
	EventLogout            = "logout"
	EventJoinRoom          = "join-room"
	EventSendMessage       = "send-message"
	EventTypingStart       = "typing-start"
	EventTypingStop        = "typing-stop"
	EventStartCall         = "start-call"
	EventAcceptCall        = "accept-call"
	EventRejectCall        = "reject-call"
	EventEndCall           = "end-call"
	EventLineBusy          = "line-busy"
	EventNegotiationNeeded = "negotiation-needed"
	EventNegotiationDone   = "negotiation-done"
	EventCandidate         = "candidate"
)

// Outbound event names.
const (
	EventReceiveMessage       = "receive-message"
	EventGetTypingStart       = "get-typing-start"
	EventGetTypingStop        = "get-typing-stop"
	EventIncomingCall         = "incoming-call"
	EventGetAcceptCall        = "get-accept-call"
	EventGetRejectCall        = "get-reject-call"
	EventGetEndCall           = "get-end-call"
	EventGetLineBusy          = "get-line-busy"
	EventGetNegotiationNeeded = "get-negotiation-needed"
	EventGetNegotiationDone   = "get-negotiation-done"
	EventGetCandidate         = "get-candidate"
)

// Message is the wire envelope in both directions. Data is kept raw so
// opaque payloads pass through untouched.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads. Identifier fields must be usable as half of a room id.

type registerPayload struct {
	UserID string `json:"userId" validate:"required,max=256,identifier"`
}

// roomPayload serves join-room, typing-start and typing-stop.
type roomPayload struct {
	UserID      string `json:"userId" validate:"required,max=256,identifier"`
	RecipientID string `json:"recipientId" validate:"required,max=256,identifier"`
}

type sendMessagePayload struct {
	UserID      string          `json:"userId" validate:"required,max=256,identifier"`
	RecipientID string          `json:"recipientId" validate:"required,max=256,identifier"`
	Message     json.RawMessage `json:"message"`
}

type startCallPayload struct {
	Caller      string          `json:"caller" validate:"required,max=256,identifier"`
	RecipientID string          `json:"recipientId" validate:"required,max=256,identifier"`
	CallType    string          `json:"callType" validate:"max=64"`
	Offer       json.RawMessage `json:"offer"`
}

type answerPayload struct {
	RecipientID string          `json:"recipientId" validate:"required,max=256,identifier"`
	Answer      json.RawMessage `json:"answer"`
}

type offerPayload struct {
	RecipientID string          `json:"recipientId" validate:"required,max=256,identifier"`
	Offer       json.RawMessage `json:"offer"`
}

type candidatePayload struct {
	RecipientID string          `json:"recipientId" validate:"required,max=256,identifier"`
	Candidate   json.RawMessage `json:"candidate"`
}

// signalPayload serves reject-call, end-call and line-busy. UserID is the
// optional sender echo.
type signalPayload struct {
	RecipientID string `json:"recipientId" validate:"required,max=256,identifier"`
	UserID      string `json:"userId,omitempty" validate:"omitempty,max=256,identifier"`
}

// Outbound payloads.

// ReceiveMessageData is sent with receive-message.
type ReceiveMessageData struct {
	Message     json.RawMessage `json:"message"`
	RecipientID string          `json:"recipientId"`
}

// TypingData is sent with get-typing-start and get-typing-stop.
type TypingData struct {
	UserID      string `json:"userId"`
	RecipientID string `json:"recipientId"`
}

// IncomingCallData is sent with incoming-call.
type IncomingCallData struct {
	Caller   string          `json:"caller"`
	CallType string          `json:"callType"`
	Offer    json.RawMessage `json:"offer"`
}

// AnswerData is sent with get-accept-call and get-negotiation-done.
type AnswerData struct {
	Answer json.RawMessage `json:"answer"`
}

// OfferData is sent with get-negotiation-needed.
type OfferData struct {
	Offer json.RawMessage `json:"offer"`
}

// CandidateData is sent with get-candidate.
type CandidateData struct {
	Candidate json.RawMessage `json:"candidate"`
}

// SignalData is sent with get-reject-call, get-end-call and get-line-busy.
// UserID is present only when the sender supplied it.
type SignalData struct {
	UserID string `json:"userId,omitempty"`
}

// EncodeFrame builds the text frame for an outbound event.
func EncodeFrame(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Message{Type: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", event, err)
	}
	return frame, nil
}
