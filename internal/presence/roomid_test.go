// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package presence

import "testing"

func TestRoomID_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"u1", "u2"},
		{"10", "9"}, // lexicographic, not numeric
		{"same", "same"},
		{"", "x"},
		{"Zed", "alice"},
	}

	for _, p := range pairs {
		if RoomID(p[0], p[1]) != RoomID(p[1], p[0]) {
			t.Errorf("RoomID(%q,%q) != RoomID(%q,%q)", p[0], p[1], p[1], p[0])
		}
	}
}

func TestRoomID_Lexicographic(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"a", "b", "a:b"},
		{"b", "a", "a:b"},
		{"9", "10", "10:9"},
		{"alice", "Zed", "Zed:alice"},
	}
	for _, tt := range tests {
		if got := RoomID(tt.a, tt.b); got != tt.want {
			t.Errorf("RoomID(%q,%q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRoomID_Distinct(t *testing.T) {
	ids := []string{"a", "b", "c", "ab", "abc", "u1", "u10"}
	for _, a := range ids {
		for _, b := range ids {
			for _, c := range ids {
				if b == c {
					continue
				}
				if RoomID(a, b) == RoomID(a, c) {
					t.Errorf("RoomID(%q,%q) == RoomID(%q,%q)", a, b, a, c)
				}
			}
		}
	}
}

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"u1", true},
		{"64f1c2ab9e", true},
		{"", false},
		{"a:b", false},
	}
	for _, tt := range tests {
		if got := ValidIdentifier(tt.id); got != tt.want {
			t.Errorf("ValidIdentifier(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func FuzzRoomID(f *testing.F) {
	f.Add("a", "b")
	f.Add("u1", "u2")
	f.Fuzz(func(t *testing.T, a, b string) {
		if RoomID(a, b) != RoomID(b, a) {
			t.Errorf("RoomID not symmetric for %q,%q", a, b)
		}
	})
}
