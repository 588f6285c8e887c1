// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package supervisor provides process supervision for the relay using suture v4.

# Overview

Long-running components are grouped into two layers under one root:

	RootSupervisor ("switchboard")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── RelayHubService
	│   └── ClusterBridgeService (if cluster.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a cluster bridge stuck in a
restart loop (for example while NATS is unreachable) does not restart the
HTTP listener, and local relaying keeps working.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMessagingService(services.NewRelayHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errChan := tree.ServeBackground(ctx)
	<-errChan

Supervisor events (start, failure, backoff) are logged through sutureslog,
which writes to the zerolog sink via logging.NewSlogLogger.

# Configuration

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,              // Failures before backoff
	    FailureDecay:     30.0,             // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Zero values fall back to these defaults.

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return nil to stop cleanly, an error to be restarted, and return promptly
once ctx is canceled.

# Debugging Shutdown Issues

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("service did not stop")
	}
*/
package supervisor
