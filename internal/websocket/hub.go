// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/switchboard/internal/config"
	"github.com/tomtom215/switchboard/internal/logging"
	"github.com/tomtom215/switchboard/internal/metrics"
	"github.com/tomtom215/switchboard/internal/presence"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// ErrHubNotRunning is returned by Attach while the hub is stopped.
var ErrHubNotRunning = errors.New("websocket hub is not running")

// Bridge forwards relay traffic that cannot be served locally to peer
// instances. Implementations must not block the caller for long.
type Bridge interface {
	PublishDirect(recipientID, event string, frame []byte)
	PublishRoom(roomID, event string, frame []byte)
	PublishClaim(userID string, at time.Time)
}

// Stats is an aggregate snapshot. It never carries identities.
type Stats struct {
	Connections     int `json:"connections"`
	RegisteredUsers int `json:"registered_users"`
	Rooms           int `json:"rooms"`
}

// Hub owns the connection registry and the rooms for one relay instance and
// routes events between its clients.
type Hub struct {
	cfg config.RelayConfig

	registry *presence.Registry[*Client]
	rooms    *presence.Rooms[*Client]

	clients map[*Client]bool
	mu      sync.RWMutex

	bridgeMu sync.RWMutex
	bridge   Bridge

	running atomic.Bool
}

// NewHub creates a hub with its own empty registry and rooms.
func NewHub(cfg config.RelayConfig) *Hub {
	return &Hub{
		cfg:      cfg,
		registry: presence.NewRegistry[*Client](),
		rooms:    presence.NewRooms[*Client](),
		clients:  make(map[*Client]bool),
	}
}

// SetBridge installs the cluster bridge. Call before serving connections.
func (h *Hub) SetBridge(b Bridge) {
	h.bridgeMu.Lock()
	h.bridge = b
	h.bridgeMu.Unlock()
}

func (h *Hub) getBridge() Bridge {
	h.bridgeMu.RLock()
	defer h.bridgeMu.RUnlock()
	return h.bridge
}

// RunWithContext marks the hub running until ctx is canceled, then closes
// every client and returns ctx.Err(). Designed for suture supervision: a
// restarted hub accepts connections again.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.running.Store(true)
	logging.Info().Str("component", "websocket-hub").Msg("websocket hub started")

	<-ctx.Done()

	// Cleared under mu so that no Attach can slip in after closeAllClients.
	h.mu.Lock()
	h.running.Store(false)
	h.mu.Unlock()
	h.logGracefulShutdown(ctx)
	return ctx.Err()
}

// IsRunning reports whether the hub accepts connections.
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Attach adds a client to the hub. The caller starts the client afterwards.
func (h *Hub) Attach(c *Client) error {
	h.mu.Lock()
	if !h.running.Load() {
		h.mu.Unlock()
		return ErrHubNotRunning
	}
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.TrackConnection(true)
	logging.Ctx(c.ctx).Debug().Int("total_clients", total).Msg("websocket client connected")
	return nil
}

// disconnect removes every trace of c: the client set, its registration and
// its room memberships. It runs once per client, from readPump.
func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	_, attached := h.clients[c]
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()

	if attached {
		metrics.TrackConnection(false)
	}

	userID, registered := h.registry.Unregister(c)
	if registered {
		metrics.RecordCleanup()
	}
	left := h.rooms.LeaveAll(c)
	h.refreshPresence()

	logging.Ctx(c.ctx).Debug().
		Bool("was_registered", registered).
		Str("user_id", userID).
		Int("rooms_left", left).
		Int("total_clients", total).
		Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs the shutdown without an
// error field; cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()

	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients signals every client to close, in ID order. Each client's
// readPump then performs its own cleanup.
func (h *Hub) closeAllClients() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		client.close()
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns aggregate counts for the stats endpoint.
func (h *Hub) Stats() Stats {
	return Stats{
		Connections:     h.GetClientCount(),
		RegisteredUsers: h.registry.Len(),
		Rooms:           h.rooms.Len(),
	}
}

func (h *Hub) refreshPresence() {
	metrics.SetPresence(h.registry.Len(), h.rooms.Len())
}

// DeliverDirect hands a frame from a peer instance to the local connection of
// recipientID. It reports whether the recipient is connected here.
func (h *Hub) DeliverDirect(recipientID, event string, frame []byte) bool {
	c, ok := h.registry.Lookup(recipientID)
	if !ok {
		return false
	}
	c.enqueue(event, frame)
	return true
}

// DeliverRoom hands a frame from a peer instance to every local member of
// roomID. The sender is remote, so no member is excluded.
func (h *Hub) DeliverRoom(roomID, event string, frame []byte) int {
	members := h.rooms.Members(roomID)
	for _, c := range members {
		c.enqueue(event, frame)
	}
	return len(members)
}

// ReleaseClaim drops the local binding of userID when a peer instance
// registered the same user after this instance did.
func (h *Hub) ReleaseClaim(userID string, at time.Time) bool {
	c, ok := h.registry.Lookup(userID)
	if !ok || c.registeredAt.Load() >= at.UnixNano() {
		return false
	}
	if !h.registry.Release(userID, c) {
		return false
	}
	h.refreshPresence()
	logging.Ctx(c.ctx).Debug().Str("user_id", userID).Msg("registration claimed by peer instance")
	return true
}
