// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package websocket

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/switchboard/internal/logging"
	"github.com/tomtom215/switchboard/internal/metrics"
	"github.com/tomtom215/switchboard/internal/presence"
	"github.com/tomtom215/switchboard/internal/validation"
)

type eventHandler func(h *Hub, c *Client, data json.RawMessage)

// handlers maps inbound event names to their handlers. Every handler is
// fire-and-forget: nothing is ever written back to the sender.
var handlers = map[string]eventHandler{
	EventRegister:          handleRegister,
	EventLogout:            handleLogout,
	EventJoinRoom:          handleJoinRoom,
	EventSendMessage:       handleSendMessage,
	EventTypingStart:       typingHandler(EventTypingStart, EventGetTypingStart),
	EventTypingStop:        typingHandler(EventTypingStop, EventGetTypingStop),
	EventStartCall:         handleStartCall,
	EventAcceptCall:        handleAcceptCall,
	EventRejectCall:        signalHandler(EventRejectCall, EventGetRejectCall),
	EventEndCall:           signalHandler(EventEndCall, EventGetEndCall),
	EventLineBusy:          signalHandler(EventLineBusy, EventGetLineBusy),
	EventNegotiationNeeded: handleNegotiationNeeded,
	EventNegotiationDone:   handleNegotiationDone,
	EventCandidate:         handleCandidate,
}

// dispatch decodes one frame and runs its handler on the caller's goroutine.
// Malformed frames are dropped and logged; the connection stays open.
func (h *Hub) dispatch(c *Client, frame []byte) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		dropMalformed(c, "", "invalid envelope", err)
		return
	}

	handler, known := handlers[msg.Type]
	metrics.RecordEventReceived(msg.Type, known)
	if !known {
		dropMalformed(c, msg.Type, "unknown event", nil)
		return
	}

	handler(h, c, msg.Data)
}

// decodePayload unmarshals and validates an event payload. A missing data
// object decodes as empty and then fails validation on required fields.
func decodePayload[T any](c *Client, event string, data json.RawMessage) (T, bool) {
	var p T
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			dropMalformed(c, event, "invalid payload", err)
			return p, false
		}
	}
	if verr := validation.ValidateStruct(&p); verr != nil {
		metrics.RecordEventDropped(metrics.DropMalformed)
		logging.Ctx(c.ctx).Warn().
			Str("event", event).
			Strs("fields", verr.Fields()).
			Str("reason", verr.Error()).
			Msg("dropping malformed event")
		return p, false
	}
	return p, true
}

func dropMalformed(c *Client, event, reason string, err error) {
	metrics.RecordEventDropped(metrics.DropMalformed)
	ev := logging.Ctx(c.ctx).Warn().Str("reason", reason)
	if event != "" {
		ev = ev.Str("event", event)
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("dropping malformed event")
}

// authorized reports whether claimed may act as the sender on c. Connections
// without a token identity may claim any id; an empty claim is an absent
// optional echo.
func authorized(c *Client, event, claimed string) bool {
	if c.identity == "" || claimed == "" || claimed == c.identity {
		return true
	}
	metrics.RecordEventDropped(metrics.DropUnauthorized)
	logging.Ctx(c.ctx).Warn().
		Str("event", event).
		Str("user_id", claimed).
		Str("token_identity", c.identity).
		Msg("sender does not match token identity, dropping")
	return false
}

func handleRegister(h *Hub, c *Client, data json.RawMessage) {
	p, ok := decodePayload[registerPayload](c, EventRegister, data)
	if !ok {
		return
	}
	if !authorized(c, EventRegister, p.UserID) {
		return
	}

	now := time.Now()
	c.registeredAt.Store(now.UnixNano())
	_, replaced := h.registry.Register(p.UserID, c)
	h.refreshPresence()

	logging.Ctx(c.ctx).Debug().
		Str("user_id", p.UserID).
		Bool("replaced", replaced).
		Msg("user registered")

	if b := h.getBridge(); b != nil {
		b.PublishClaim(p.UserID, now)
	}
}

func handleLogout(h *Hub, c *Client, _ json.RawMessage) {
	userID, ok := h.registry.Unregister(c)
	if !ok {
		return
	}
	metrics.RecordCleanup()
	h.refreshPresence()
	logging.Ctx(c.ctx).Debug().Str("user_id", userID).Msg("user logged out")
}

func handleJoinRoom(h *Hub, c *Client, data json.RawMessage) {
	p, ok := decodePayload[roomPayload](c, EventJoinRoom, data)
	if !ok || !authorized(c, EventJoinRoom, p.UserID) {
		return
	}
	roomID := presence.RoomID(p.UserID, p.RecipientID)
	if h.rooms.Join(roomID, c) {
		h.refreshPresence()
	}
}

func handleSendMessage(h *Hub, c *Client, data json.RawMessage) {
	p, ok := decodePayload[sendMessagePayload](c, EventSendMessage, data)
	if !ok || !authorized(c, EventSendMessage, p.UserID) {
		return
	}
	h.toRoom(c, presence.RoomID(p.UserID, p.RecipientID), EventReceiveMessage, ReceiveMessageData{
		Message:     p.Message,
		RecipientID: p.RecipientID,
	})
}

func typingHandler(in, out string) eventHandler {
	return func(h *Hub, c *Client, data json.RawMessage) {
		p, ok := decodePayload[roomPayload](c, in, data)
		if !ok || !authorized(c, in, p.UserID) {
			return
		}
		h.toRoom(c, presence.RoomID(p.UserID, p.RecipientID), out, TypingData{
			UserID:      p.UserID,
			RecipientID: p.RecipientID,
		})
	}
}

func handleStartCall(h *Hub, c *Client, data json.RawMessage) {
	p, ok := decodePayload[startCallPayload](c, EventStartCall, data)
	if !ok || !authorized(c, EventStartCall, p.Caller) {
		return
	}
	h.toUser(c, p.RecipientID, EventIncomingCall, IncomingCallData{
		Caller:   p.Caller,
		CallType: p.CallType,
		Offer:    p.Offer,
	})
}

func handleAcceptCall(h *Hub, c *Client, data json.RawMessage) {
	p, ok := decodePayload[answerPayload](c, EventAcceptCall, data)
	if !ok {
		return
	}
	h.toUser(c, p.RecipientID, EventGetAcceptCall, AnswerData{Answer: p.Answer})
}

func signalHandler(in, out string) eventHandler {
	return func(h *Hub, c *Client, data json.RawMessage) {
		p, ok := decodePayload[signalPayload](c, in, data)
		if !ok || !authorized(c, in, p.UserID) {
			return
		}
		h.toUser(c, p.RecipientID, out, SignalData{UserID: p.UserID})
	}
}

func handleNegotiationNeeded(h *Hub, c *Client, data json.RawMessage) {
	p, ok := decodePayload[offerPayload](c, EventNegotiationNeeded, data)
	if !ok {
		return
	}
	h.toUser(c, p.RecipientID, EventGetNegotiationNeeded, OfferData{Offer: p.Offer})
}

func handleNegotiationDone(h *Hub, c *Client, data json.RawMessage) {
	p, ok := decodePayload[answerPayload](c, EventNegotiationDone, data)
	if !ok {
		return
	}
	h.toUser(c, p.RecipientID, EventGetNegotiationDone, AnswerData{Answer: p.Answer})
}

func handleCandidate(h *Hub, c *Client, data json.RawMessage) {
	p, ok := decodePayload[candidatePayload](c, EventCandidate, data)
	if !ok {
		return
	}
	h.toUser(c, p.RecipientID, EventGetCandidate, CandidateData{Candidate: p.Candidate})
}

// toUser delivers to the recipient's current connection. A recipient that is
// not registered here goes to the bridge when one is installed and is
// otherwise dropped silently.
func (h *Hub) toUser(sender *Client, recipientID, event string, data interface{}) {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		logging.Ctx(sender.ctx).Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return
	}

	if target, ok := h.registry.Lookup(recipientID); ok {
		target.enqueue(event, frame)
		return
	}

	if b := h.getBridge(); b != nil {
		b.PublishDirect(recipientID, event, frame)
		return
	}

	metrics.RecordEventDropped(metrics.DropOffline)
	logging.Ctx(sender.ctx).Debug().Str("event", event).Msg("recipient offline, dropping event")
}

// toRoom delivers to every member of roomID except the sender, then forwards
// to peer instances when a bridge is installed.
func (h *Hub) toRoom(sender *Client, roomID, event string, data interface{}) {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		logging.Ctx(sender.ctx).Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return
	}

	for _, member := range h.rooms.Others(roomID, sender) {
		member.enqueue(event, frame)
	}

	if b := h.getBridge(); b != nil {
		b.PublishRoom(roomID, event, frame)
	}
}
