// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package websocket implements the presence and call-signaling relay.

A Hub owns the connection registry (user id to connection) and the rooms for
one relay instance. Each Client is one WebSocket connection with two
goroutines:

  - readPump: reads frames, applies flood control and dispatches events in
    arrival order; its exit performs the connection's cleanup
  - writePump: drains the bounded send buffer and sends keepalive pings

Key Components:

  - Hub: registry, rooms, client set and routing
  - Client: one connection and its pumps
  - Message: the {"type": ..., "data": ...} wire envelope
  - Bridge: optional forwarding to peer relay instances

Routing:

	register, logout                 registry only
	join-room                        rooms only
	send-message, typing-start/stop  every other member of RoomID(userId, recipientId)
	start-call, accept-call, ...     the recipient's current connection

All events are fire-and-forget. Malformed frames, offline recipients, full
send buffers and rate-limited events are dropped, logged and counted; nothing
is ever written back to the sender.

Opaque payloads (message, offer, answer, candidate) are carried as raw JSON
and forwarded unchanged.

Usage:

	hub := websocket.NewHub(cfg.Relay)
	go hub.RunWithContext(ctx)

	conn, _ := upgrader.Upgrade(w, r, nil)
	if _, err := hub.Serve(r.Context(), conn, identity); err != nil {
	    // hub stopped, connection already closed
	}

Thread Safety:

Registry and rooms carry their own locks. Deliveries from any goroutine use
a non-blocking send on the client's buffer, which is never closed.
*/
package websocket
