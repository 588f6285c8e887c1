// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package presence

import "sync"

// Registry maps user ids to their current connection.
//
// Invariants, all maintained under mu:
//   - byUser[u] == c  <=>  byConn[c] == u
//   - a user has at most one connection and a connection at most one user
type Registry[C comparable] struct {
	mu     sync.RWMutex
	byUser map[string]C
	byConn map[C]string
}

// NewRegistry creates an empty registry.
func NewRegistry[C comparable]() *Registry[C] {
	return &Registry[C]{
		byUser: make(map[string]C),
		byConn: make(map[C]string),
	}
}

// Register binds userID to conn, replacing any earlier connection for that
// user. The replaced connection stays open but is no longer addressable. If
// conn was bound to a different user, that binding is released first.
//
// It returns the replaced connection, if any.
func (r *Registry[C]) Register(userID string, conn C) (replaced C, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prevUser, bound := r.byConn[conn]; bound {
		if prevUser == userID {
			return replaced, false
		}
		delete(r.byUser, prevUser)
	}

	if prev, exists := r.byUser[userID]; exists {
		delete(r.byConn, prev)
		replaced, ok = prev, true
	}

	r.byUser[userID] = conn
	r.byConn[conn] = userID
	return replaced, ok
}

// Unregister removes whatever user conn is bound to. It returns the released
// user id and true, or "" and false when conn was not registered. Calling it
// twice for the same connection is a no-op the second time.
func (r *Registry[C]) Unregister(conn C) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[conn]
	if !ok {
		return "", false
	}
	delete(r.byConn, conn)
	delete(r.byUser, userID)
	return userID, true
}

// Release drops userID's binding if it is still held by conn. A binding
// that has since moved to another connection is left alone. The cluster
// bridge uses it when the user registered on another instance.
func (r *Registry[C]) Release(userID string, conn C) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.byUser[userID]; !ok || cur != conn {
		return false
	}
	delete(r.byUser, userID)
	delete(r.byConn, conn)
	return true
}

// Lookup returns the current connection for userID.
func (r *Registry[C]) Lookup(userID string) (C, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byUser[userID]
	return conn, ok
}

// UserOf returns the user id bound to conn.
func (r *Registry[C]) UserOf(conn C) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[conn]
	return userID, ok
}

// Len returns the number of registered users.
func (r *Registry[C]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
