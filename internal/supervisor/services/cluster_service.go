// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/switchboard/internal/logging"
)

// BridgeRunner matches the *cluster.Bridge lifecycle.
type BridgeRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// ClusterBridgeService adapts the bridge's Start/Shutdown lifecycle to
// suture's Serve pattern. A failed Start is returned so suture restarts the
// service with backoff; the hub keeps relaying locally meanwhile.
//
//	bridge, _ := cluster.NewBridge(cfg.Cluster, hub)
//	tree.AddMessagingService(services.NewClusterBridgeService(bridge, 10*time.Second))
type ClusterBridgeService struct {
	bridge          BridgeRunner
	shutdownTimeout time.Duration
	name            string
}

// NewClusterBridgeService creates a new cluster bridge service wrapper.
// Non-positive timeouts become 10s.
func NewClusterBridgeService(bridge BridgeRunner, shutdownTimeout time.Duration) *ClusterBridgeService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &ClusterBridgeService{
		bridge:          bridge,
		shutdownTimeout: shutdownTimeout,
		name:            "cluster-bridge",
	}
}

// Serve implements suture.Service.
func (s *ClusterBridgeService) Serve(ctx context.Context) error {
	if err := s.bridge.Start(ctx); err != nil {
		return fmt.Errorf("cluster bridge start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.bridge.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("cluster bridge did not stop cleanly")
	}

	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *ClusterBridgeService) String() string {
	return s.name
}
