// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package presence holds the relay's volatile state: which connection belongs to
which user, and which connections share a conversation room.

Key Components:

  - Registry: userId -> connection, with a reverse index connection -> userId
    kept in the same critical section. Last registration wins.
  - Rooms: RoomID -> set of connections, with a per-connection membership
    index so a closing connection leaves every room in one call.
  - RoomID: order-independent identifier for a pair of users.

Both types are generic over the connection handle so they can be exercised
with plain values in tests and with *websocket.Client in the relay.

Thread Safety:

Registry and Rooms each guard their maps with one mutex. Every exported
method is safe for concurrent use. Removal methods report whether anything
was removed, which makes repeated cleanup for the same connection harmless.

Nothing in this package is persisted; a process restart starts empty.
*/
package presence
