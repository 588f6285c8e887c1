// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package websocket

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/switchboard/internal/metrics"
)

func TestDispatch_RegisterLastWins(t *testing.T) {
	hub := setupHub(t)
	first, second := newTestClient(hub), newTestClient(hub)

	emit(t, hub, first, EventRegister, map[string]string{"userId": "u1"})
	emit(t, hub, second, EventRegister, map[string]string{"userId": "u1"})

	if got, ok := hub.registry.Lookup("u1"); !ok || got != second {
		t.Fatal("u1 should resolve to the second connection")
	}
	if hub.registry.Len() != 1 {
		t.Errorf("registry has %d entries, want 1", hub.registry.Len())
	}

	// The stale connection going away must not remove the newer binding.
	hub.disconnect(first)
	if got, ok := hub.registry.Lookup("u1"); !ok || got != second {
		t.Error("stale disconnect removed the newer registration")
	}
}

func TestDispatch_ReRegisterReleasesOldIdentity(t *testing.T) {
	hub := setupHub(t)
	c := newTestClient(hub)

	emit(t, hub, c, EventRegister, map[string]string{"userId": "old"})
	emit(t, hub, c, EventRegister, map[string]string{"userId": "new"})

	if _, ok := hub.registry.Lookup("old"); ok {
		t.Error("old identity should be released")
	}
	if user, _ := hub.registry.UserOf(c); user != "new" {
		t.Errorf("UserOf() = %q, want new", user)
	}
}

func TestDispatch_LogoutThenDisconnect(t *testing.T) {
	hub := setupHub(t)
	c := newTestClient(hub)
	_ = hub.Attach(c)

	before := testutil.ToFloat64(metrics.RelayCleanups)

	emit(t, hub, c, EventRegister, map[string]string{"userId": "u1"})
	emit(t, hub, c, EventLogout, nil)
	emit(t, hub, c, EventLogout, nil)
	hub.disconnect(c)

	if got := testutil.ToFloat64(metrics.RelayCleanups); got != before+1 {
		t.Errorf("cleanups = %v, want exactly one removal (%v)", got, before+1)
	}
	if _, ok := hub.registry.Lookup("u1"); ok {
		t.Error("u1 should be gone")
	}
}

func TestDispatch_SendMessageToRoom(t *testing.T) {
	hub := setupHub(t)
	a, b := newTestClient(hub), newTestClient(hub)

	emit(t, hub, a, EventJoinRoom, map[string]string{"userId": "a", "recipientId": "b"})
	emit(t, hub, b, EventJoinRoom, map[string]string{"userId": "b", "recipientId": "a"})
	emit(t, hub, a, EventJoinRoom, map[string]string{"userId": "a", "recipientId": "b"})

	emit(t, hub, a, EventSendMessage, map[string]interface{}{
		"userId":      "a",
		"recipientId": "b",
		"message":     map[string]interface{}{"text": "hello", "id": 7},
	})

	msg := nextFrame(t, b)
	if msg.Type != EventReceiveMessage {
		t.Fatalf("type = %s, want %s", msg.Type, EventReceiveMessage)
	}
	var data ReceiveMessageData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.RecipientID != "b" {
		t.Errorf("recipientId = %q, want b", data.RecipientID)
	}
	if string(data.Message) != `{"id":7,"text":"hello"}` {
		t.Errorf("message = %s, want the original object", data.Message)
	}

	expectNoFrame(t, a)
	expectNoFrame(t, b)
}

func TestDispatch_Typing(t *testing.T) {
	hub := setupHub(t)
	a, b := newTestClient(hub), newTestClient(hub)
	emit(t, hub, a, EventJoinRoom, map[string]string{"userId": "a", "recipientId": "b"})
	emit(t, hub, b, EventJoinRoom, map[string]string{"userId": "b", "recipientId": "a"})

	tests := []struct {
		in  string
		out string
	}{
		{EventTypingStart, EventGetTypingStart},
		{EventTypingStop, EventGetTypingStop},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			emit(t, hub, a, tt.in, map[string]string{"userId": "a", "recipientId": "b"})
			msg := nextFrame(t, b)
			if msg.Type != tt.out {
				t.Fatalf("type = %s, want %s", msg.Type, tt.out)
			}
			var data TypingData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if data.UserID != "a" || data.RecipientID != "b" {
				t.Errorf("data = %+v", data)
			}
			expectNoFrame(t, a)
		})
	}
}

func TestDispatch_StartCallOffline(t *testing.T) {
	hub := setupHub(t)
	caller := newTestClient(hub)
	emit(t, hub, caller, EventRegister, map[string]string{"userId": "u1"})

	before := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropOffline))

	emit(t, hub, caller, EventStartCall, map[string]interface{}{
		"caller": "u1", "recipientId": "ghost", "callType": "audio", "offer": "sdp",
	})

	expectNoFrame(t, caller)
	if got := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropOffline)); got != before+1 {
		t.Errorf("offline drops = %v, want %v", got, before+1)
	}
}

func TestDispatch_CallFlow(t *testing.T) {
	hub := setupHub(t)
	u1, u2 := newTestClient(hub), newTestClient(hub)
	emit(t, hub, u1, EventRegister, map[string]string{"userId": "u1"})
	emit(t, hub, u2, EventRegister, map[string]string{"userId": "u2"})

	offer := json.RawMessage(`{"sdp":"v=0","type":"offer"}`)
	emit(t, hub, u1, EventStartCall, map[string]interface{}{
		"caller": "u1", "recipientId": "u2", "callType": "video", "offer": offer,
	})

	msg := nextFrame(t, u2)
	if msg.Type != EventIncomingCall {
		t.Fatalf("u2 got %s, want %s", msg.Type, EventIncomingCall)
	}
	var incoming IncomingCallData
	if err := json.Unmarshal(msg.Data, &incoming); err != nil {
		t.Fatalf("decode incoming-call: %v", err)
	}
	if incoming.Caller != "u1" || incoming.CallType != "video" || string(incoming.Offer) != string(offer) {
		t.Errorf("incoming-call = %+v", incoming)
	}

	answer := json.RawMessage(`{"sdp":"v=0","type":"answer"}`)
	emit(t, hub, u2, EventAcceptCall, map[string]interface{}{"recipientId": "u1", "answer": answer})

	msg = nextFrame(t, u1)
	if msg.Type != EventGetAcceptCall {
		t.Fatalf("u1 got %s, want %s", msg.Type, EventGetAcceptCall)
	}
	var accepted AnswerData
	if err := json.Unmarshal(msg.Data, &accepted); err != nil {
		t.Fatalf("decode get-accept-call: %v", err)
	}
	if string(accepted.Answer) != string(answer) {
		t.Errorf("answer = %s, want %s", accepted.Answer, answer)
	}
}

func TestDispatch_DirectSignals(t *testing.T) {
	hub := setupHub(t)
	sender, target := newTestClient(hub), newTestClient(hub)
	emit(t, hub, target, EventRegister, map[string]string{"userId": "u2"})

	tests := []struct {
		name    string
		event   string
		payload map[string]interface{}
		out     string
		field   string
		want    string
	}{
		{
			name:    "negotiation needed",
			event:   EventNegotiationNeeded,
			payload: map[string]interface{}{"recipientId": "u2", "offer": json.RawMessage(`{"o":1}`)},
			out:     EventGetNegotiationNeeded,
			field:   "offer",
			want:    `{"o":1}`,
		},
		{
			name:    "negotiation done",
			event:   EventNegotiationDone,
			payload: map[string]interface{}{"recipientId": "u2", "answer": json.RawMessage(`{"a":1}`)},
			out:     EventGetNegotiationDone,
			field:   "answer",
			want:    `{"a":1}`,
		},
		{
			name:    "candidate",
			event:   EventCandidate,
			payload: map[string]interface{}{"recipientId": "u2", "candidate": json.RawMessage(`{"candidate":"udp 1","sdpMid":"0"}`)},
			out:     EventGetCandidate,
			field:   "candidate",
			want:    `{"candidate":"udp 1","sdpMid":"0"}`,
		},
		{
			name:    "reject with echo",
			event:   EventRejectCall,
			payload: map[string]interface{}{"recipientId": "u2", "userId": "u1"},
			out:     EventGetRejectCall,
			field:   "userId",
			want:    `"u1"`,
		},
		{
			name:    "end call",
			event:   EventEndCall,
			payload: map[string]interface{}{"recipientId": "u2"},
			out:     EventGetEndCall,
		},
		{
			name:    "line busy",
			event:   EventLineBusy,
			payload: map[string]interface{}{"recipientId": "u2"},
			out:     EventGetLineBusy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emit(t, hub, sender, tt.event, tt.payload)
			msg := nextFrame(t, target)
			if msg.Type != tt.out {
				t.Fatalf("type = %s, want %s", msg.Type, tt.out)
			}

			var fields map[string]json.RawMessage
			if err := json.Unmarshal(msg.Data, &fields); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if tt.field == "" {
				if len(fields) != 0 {
					t.Errorf("data = %s, want empty object", msg.Data)
				}
				return
			}
			if string(fields[tt.field]) != tt.want {
				t.Errorf("%s = %s, want %s", tt.field, fields[tt.field], tt.want)
			}
		})
	}
	expectNoFrame(t, sender)
}

func TestDispatch_MalformedDropped(t *testing.T) {
	hub := setupHub(t)
	c := newTestClient(hub)
	other := newTestClient(hub)
	emit(t, hub, other, EventRegister, map[string]string{"userId": "u2"})

	frames := []struct {
		name  string
		frame string
	}{
		{"not json", `{{{`},
		{"unknown event", `{"type":"drop-table","data":{}}`},
		{"missing data", `{"type":"register"}`},
		{"empty user id", `{"type":"register","data":{"userId":""}}`},
		{"separator in user id", `{"type":"register","data":{"userId":"a:b"}}`},
		{"wrong field type", `{"type":"register","data":{"userId":42}}`},
		{"missing recipient", `{"type":"start-call","data":{"caller":"u1","offer":{}}}`},
		{"separator in recipient", `{"type":"candidate","data":{"recipientId":"u:2","candidate":{}}}`},
		{"join without user", `{"type":"join-room","data":{"recipientId":"u2"}}`},
	}

	before := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropMalformed))
	for _, f := range frames {
		t.Run(f.name, func(t *testing.T) {
			hub.dispatch(c, []byte(f.frame))
		})
	}

	if got := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropMalformed)); got != before+float64(len(frames)) {
		t.Errorf("malformed drops = %v, want %v", got, before+float64(len(frames)))
	}
	if _, ok := hub.registry.UserOf(c); ok {
		t.Error("malformed register must not bind the connection")
	}
	if hub.rooms.Len() != 0 {
		t.Error("malformed join must not create a room")
	}
	expectNoFrame(t, c)
	expectNoFrame(t, other)
}

func TestDispatch_RegisterMustMatchTokenIdentity(t *testing.T) {
	hub := setupHub(t)
	c := newTestClient(hub)
	c.identity = "alice"

	before := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropUnauthorized))

	emit(t, hub, c, EventRegister, map[string]string{"userId": "mallory"})
	if _, ok := hub.registry.Lookup("mallory"); ok {
		t.Fatal("register for a foreign identity was accepted")
	}
	if got := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropUnauthorized)); got != before+1 {
		t.Errorf("unauthorized drops = %v, want %v", got, before+1)
	}

	emit(t, hub, c, EventRegister, map[string]string{"userId": "alice"})
	if got, ok := hub.registry.Lookup("alice"); !ok || got != c {
		t.Error("register for the token identity should succeed")
	}
}

func TestDispatch_SenderMustMatchTokenIdentity(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  map[string]interface{}
	}{
		{"join-room", EventJoinRoom, map[string]interface{}{"userId": "alice", "recipientId": "bob"}},
		{"send-message", EventSendMessage, map[string]interface{}{"userId": "alice", "recipientId": "bob", "message": "hi"}},
		{"typing-start", EventTypingStart, map[string]interface{}{"userId": "alice", "recipientId": "bob"}},
		{"typing-stop", EventTypingStop, map[string]interface{}{"userId": "alice", "recipientId": "bob"}},
		{"start-call", EventStartCall, map[string]interface{}{"caller": "alice", "recipientId": "bob", "callType": "video", "offer": 1}},
		{"reject-call", EventRejectCall, map[string]interface{}{"recipientId": "bob", "userId": "alice"}},
		{"end-call", EventEndCall, map[string]interface{}{"recipientId": "bob", "userId": "alice"}},
		{"line-busy", EventLineBusy, map[string]interface{}{"recipientId": "bob", "userId": "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := setupHub(t)
			bob := newTestClient(hub)
			bob.identity = "bob"
			emit(t, hub, bob, EventRegister, map[string]string{"userId": "bob"})
			emit(t, hub, bob, EventJoinRoom, map[string]string{"userId": "bob", "recipientId": "alice"})

			mallory := newTestClient(hub)
			mallory.identity = "mallory"
			emit(t, hub, mallory, EventRegister, map[string]string{"userId": "mallory"})

			before := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropUnauthorized))

			emit(t, hub, mallory, tt.event, tt.data)

			if got := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropUnauthorized)); got != before+1 {
				t.Errorf("unauthorized drops = %v, want %v", got, before+1)
			}
			expectNoFrame(t, bob)
			if members := hub.rooms.Members("alice:bob"); len(members) != 1 {
				t.Errorf("room alice:bob has %d members, want 1", len(members))
			}
		})
	}
}

func TestDispatch_ForeignRoomJoinCannotEavesdrop(t *testing.T) {
	hub := setupHub(t)
	alice, bob, mallory := newTestClient(hub), newTestClient(hub), newTestClient(hub)
	alice.identity, bob.identity, mallory.identity = "alice", "bob", "mallory"

	emit(t, hub, alice, EventJoinRoom, map[string]string{"userId": "alice", "recipientId": "bob"})
	emit(t, hub, bob, EventJoinRoom, map[string]string{"userId": "bob", "recipientId": "alice"})
	emit(t, hub, mallory, EventJoinRoom, map[string]string{"userId": "alice", "recipientId": "bob"})

	emit(t, hub, alice, EventSendMessage, map[string]string{"userId": "alice", "recipientId": "bob", "message": "secret"})

	if msg := nextFrame(t, bob); msg.Type != EventReceiveMessage {
		t.Errorf("bob got %q, want %q", msg.Type, EventReceiveMessage)
	}
	expectNoFrame(t, mallory)
}

func TestDispatch_TokenIdentityAllowsOwnEvents(t *testing.T) {
	hub := setupHub(t)
	alice, bob := newTestClient(hub), newTestClient(hub)
	alice.identity, bob.identity = "alice", "bob"
	emit(t, hub, bob, EventRegister, map[string]string{"userId": "bob"})

	emit(t, hub, alice, EventStartCall, map[string]interface{}{"caller": "alice", "recipientId": "bob", "offer": 1})
	if msg := nextFrame(t, bob); msg.Type != EventIncomingCall {
		t.Errorf("bob got %q, want %q", msg.Type, EventIncomingCall)
	}

	// The sender echo on end-call is optional.
	emit(t, hub, alice, EventEndCall, map[string]string{"recipientId": "bob"})
	if msg := nextFrame(t, bob); msg.Type != EventGetEndCall {
		t.Errorf("bob got %q, want %q", msg.Type, EventGetEndCall)
	}
}

func TestDispatch_BufferFullDrops(t *testing.T) {
	cfg := testRelayConfig()
	cfg.SendBufferSize = 1
	hub := NewHub(cfg)
	sender, target := newTestClient(hub), newTestClient(hub)
	emit(t, hub, target, EventRegister, map[string]string{"userId": "slow"})

	before := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropBufferFull))

	for i := 0; i < 3; i++ {
		emit(t, hub, sender, EventEndCall, map[string]string{"recipientId": "slow"})
	}

	if got := testutil.ToFloat64(metrics.RelayEventsDropped.WithLabelValues(metrics.DropBufferFull)); got != before+2 {
		t.Errorf("buffer_full drops = %v, want %v", got, before+2)
	}
	nextFrame(t, target)
	expectNoFrame(t, target)
}

func TestClient_EnqueueAfterClose(t *testing.T) {
	hub := NewHub(testRelayConfig())
	c := newTestClient(hub)
	c.close()
	c.close()

	if c.enqueue(EventGetEndCall, []byte(`{}`)) {
		t.Error("enqueue on a closed client should report false")
	}
	expectNoFrame(t, c)
}

func TestEncodeFrame(t *testing.T) {
	frame, err := EncodeFrame(EventGetEndCall, SignalData{})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	if string(frame) != `{"type":"get-end-call","data":{}}` {
		t.Errorf("frame = %s", frame)
	}

	frame, err = EncodeFrame(EventGetAcceptCall, AnswerData{Answer: json.RawMessage(`{"sdp":"x"}`)})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	if string(frame) != `{"type":"get-accept-call","data":{"answer":{"sdp":"x"}}}` {
		t.Errorf("frame = %s", frame)
	}
}
