// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package services

import (
	"context"
)

// ContextHub matches *websocket.Hub's RunWithContext method, so this package
// does not import the relay.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// RelayHubService wraps the relay hub as a supervised service.
//
// RunWithContext already follows the suture.Service contract: it marks the
// hub running, blocks until ctx ends and then closes every client.
//
//	hub := websocket.NewHub(cfg.Relay)
//	tree.AddMessagingService(services.NewRelayHubService(hub))
type RelayHubService struct {
	hub  ContextHub
	name string
}

// NewRelayHubService creates a new relay hub service wrapper.
func NewRelayHubService(hub ContextHub) *RelayHubService {
	return &RelayHubService{
		hub:  hub,
		name: "relay-hub",
	}
}

// Serve implements suture.Service.
func (w *RelayHubService) Serve(ctx context.Context) error {
	return w.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it in log messages.
func (w *RelayHubService) String() string {
	return w.name
}
