// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/switchboard/internal/api"
	"github.com/tomtom215/switchboard/internal/cluster"
	"github.com/tomtom215/switchboard/internal/config"
	"github.com/tomtom215/switchboard/internal/logging"
	ws "github.com/tomtom215/switchboard/internal/websocket"
)

// clusterComponents holds the optional cluster pieces. Both fields are nil
// when clustering is disabled.
type clusterComponents struct {
	Server *cluster.EmbeddedServer
	Bridge *cluster.Bridge
}

// initCluster starts the embedded NATS server when configured and connects
// the bridge. The bridge is installed on the hub; consuming starts when the
// supervisor runs the bridge service.
func initCluster(cfg *config.Config, hub *ws.Hub) (*clusterComponents, error) {
	components := &clusterComponents{}
	if !cfg.Cluster.Enabled {
		logging.Info().Msg("Cluster bridge disabled - single instance relay")
		return components, nil
	}

	clusterCfg := cfg.Cluster
	if clusterCfg.EmbeddedServer {
		srv, err := cluster.NewEmbeddedServer(clusterCfg.EmbeddedHost, clusterCfg.EmbeddedPort)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		components.Server = srv
		clusterCfg.URL = srv.ClientURL()
		logging.Info().Str("url", srv.ClientURL()).Msg("Embedded NATS server started")
	}

	bridge, err := cluster.NewBridge(clusterCfg, hub)
	if err != nil {
		components.Close()
		return nil, err
	}
	components.Bridge = bridge
	hub.SetBridge(bridge)

	logging.Info().
		Str("node_id", bridge.NodeID()).
		Str("subject", clusterCfg.Subject).
		Msg("Cluster bridge configured")
	return components, nil
}

// Status returns the readiness source for the API, or nil when disabled.
func (c *clusterComponents) Status() api.ClusterStatus {
	if c.Bridge == nil {
		return nil
	}
	return c.Bridge
}

// Close releases the bridge connection and stops the embedded server.
func (c *clusterComponents) Close() {
	if c.Bridge != nil {
		if err := c.Bridge.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing cluster bridge")
		}
	}
	if c.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(ctx); err != nil {
			logging.Warn().Err(err).Msg("Error stopping embedded NATS server")
		}
	}
}
