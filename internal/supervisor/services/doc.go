// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package services provides suture.Service wrappers for relay components.

Each wrapper translates a component's own lifecycle (RunWithContext,
Start/Shutdown, ListenAndServe) into suture's context-aware Serve:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

Relay Hub (RelayHubService):
  - Wraps websocket.Hub; RunWithContext already blocks until ctx ends
  - Closes every client connection with a normal close frame on shutdown

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - http.ErrServerClosed is treated as a clean stop

Cluster Bridge (ClusterBridgeService):
  - Wraps cluster.Bridge Start/Shutdown
  - A failed Start is returned so suture retries with backoff

# Interfaces

The wrappers depend on small interfaces (ContextHub, HTTPServer,
BridgeRunner) rather than concrete types, so tests can use doubles and this
package does not import the components it supervises.

# Example

	tree.AddMessagingService(services.NewRelayHubService(hub))
	tree.AddMessagingService(services.NewClusterBridgeService(bridge, cfg.Server.ShutdownTimeout))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

# Service Names

Names appear in suture's log events:
  - relay-hub
  - http-server
  - cluster-bridge
*/
package services
