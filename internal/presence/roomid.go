// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package presence

import "strings"

// RoomSeparator joins the two participant ids of a RoomID. Identifiers that
// contain it are rejected at the protocol boundary so that distinct pairs can
// never produce the same RoomID.
const RoomSeparator = ":"

// RoomID returns the deterministic room identifier for a pair of users.
// Ids are compared as opaque strings (lexicographic byte order), so
// RoomID(a, b) == RoomID(b, a).
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + RoomSeparator + b
}

// ValidIdentifier reports whether id can take part in a RoomID.
func ValidIdentifier(id string) bool {
	return id != "" && !strings.Contains(id, RoomSeparator)
}
