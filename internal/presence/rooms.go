// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package presence

import "sync"

// Rooms tracks room membership for connections.
type Rooms[C comparable] struct {
	mu       sync.RWMutex
	members  map[string]map[C]struct{}
	joinedBy map[C]map[string]struct{}
}

// NewRooms creates an empty room set.
func NewRooms[C comparable]() *Rooms[C] {
	return &Rooms[C]{
		members:  make(map[string]map[C]struct{}),
		joinedBy: make(map[C]map[string]struct{}),
	}
}

// Join adds conn to roomID. It returns false if conn was already a member.
func (r *Rooms[C]) Join(roomID string, conn C) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.members[roomID]
	if set == nil {
		set = make(map[C]struct{})
		r.members[roomID] = set
	}
	if _, ok := set[conn]; ok {
		return false
	}
	set[conn] = struct{}{}

	joined := r.joinedBy[conn]
	if joined == nil {
		joined = make(map[string]struct{})
		r.joinedBy[conn] = joined
	}
	joined[roomID] = struct{}{}
	return true
}

// LeaveAll removes conn from every room it joined and returns how many.
func (r *Rooms[C]) LeaveAll(conn C) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.joinedBy[conn]
	n := 0
	for roomID := range joined {
		if r.leaveLocked(roomID, conn) {
			n++
		}
	}
	return n
}

func (r *Rooms[C]) leaveLocked(roomID string, conn C) bool {
	set, ok := r.members[roomID]
	if !ok {
		return false
	}
	if _, ok := set[conn]; !ok {
		return false
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.members, roomID)
	}
	if joined := r.joinedBy[conn]; joined != nil {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(r.joinedBy, conn)
		}
	}
	return true
}

// Others returns the members of roomID other than sender. The result is a
// snapshot; sends happen outside the lock.
func (r *Rooms[C]) Others(roomID string, sender C) []C {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.members[roomID]
	out := make([]C, 0, len(set))
	for conn := range set {
		if conn != sender {
			out = append(out, conn)
		}
	}
	return out
}

// Members returns every member of roomID.
func (r *Rooms[C]) Members(roomID string) []C {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.members[roomID]
	out := make([]C, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}

// IsMember reports whether conn joined roomID.
func (r *Rooms[C]) IsMember(roomID string, conn C) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[roomID][conn]
	return ok
}

// Len returns the number of non-empty rooms.
func (r *Rooms[C]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
