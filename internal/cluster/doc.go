// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package cluster links relay instances so that users connected to different
instances can reach each other.

Each instance publishes to one core NATS subject through Watermill:

  - direct: a frame for a recipient that is not connected locally
  - room: a frame for a room, after local members were served
  - claim: a registration, so peers release older bindings of the same user

Every instance consumes every envelope, ignores its own, and acts only on the
connections it holds. Delivery is at most once and nothing is stored; this
matches the single-instance relay, which drops events for offline users.

Publishes pass through a gobreaker circuit breaker so that a lost NATS server
does not stall connection goroutines. Breaker state is exported as
relay_cluster_breaker_state (0 closed, 1 half-open, 2 open).

EmbeddedServer runs an in-process NATS server for single-host deployments and
tests:

	srv, err := cluster.NewEmbeddedServer("127.0.0.1", -1)
	cfg.URL = srv.ClientURL()
	bridge, err := cluster.NewBridge(cfg, hub)
	hub.SetBridge(bridge)
	err = bridge.Start(ctx)
*/
package cluster
