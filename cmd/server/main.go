// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

// Package main is the entry point for the Switchboard relay server.
//
// Switchboard is the realtime layer of a social-networking backend: it maps
// user identities to live WebSocket connections, pairs users into rooms and
// relays chat, typing and WebRTC call-signaling events between them.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Logging: zerolog, JSON or console
//  3. Supervisor tree: suture v4 with messaging and api layers
//  4. Relay hub: connection registry and rooms
//  5. Upgrade authentication (optional): HMAC JWT verification
//  6. Cluster bridge (optional): NATS link between relay instances
//  7. HTTP server: /ws, health, stats and metrics on a chi router
//
// # Configuration
//
// Frequently used environment variables:
//   - HTTP_PORT (default 8080), HTTP_HOST
//   - AUTH_MODE: none or jwt; JWT_SECRET and JWT_IDENTITY_CLAIM for jwt
//   - CORS_ORIGINS: comma-separated browser origins allowed to connect
//   - RELAY_EVENT_RATE, RELAY_EVENT_BURST: per-connection flood control
//   - CLUSTER_ENABLED, NATS_URL or NATS_EMBEDDED: multi-instance relay
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server stops
// accepting upgrades, the hub closes every client with a normal close frame,
// and the cluster bridge unsubscribes before the NATS connection is closed.
//
// # Example Usage
//
// Development:
//
//	export AUTH_MODE=none
//	export LOG_FORMAT=console
//	./switchboard
//
// Two instances sharing one NATS server:
//
//	export CLUSTER_ENABLED=true
//	export NATS_URL=nats://nats:4222
//	export AUTH_MODE=jwt
//	export JWT_SECRET=$(openssl rand -base64 32)
//	./switchboard
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/switchboard/internal/api"
	"github.com/tomtom215/switchboard/internal/auth"
	"github.com/tomtom215/switchboard/internal/config"
	"github.com/tomtom215/switchboard/internal/logging"
	"github.com/tomtom215/switchboard/internal/supervisor"
	"github.com/tomtom215/switchboard/internal/supervisor/services"
	ws "github.com/tomtom215/switchboard/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("cluster_enabled", cfg.Cluster.Enabled).
		Msg("Starting Switchboard relay")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	hub := ws.NewHub(cfg.Relay)

	verifier := initAuth(cfg)

	cluster, err := initCluster(cfg, hub)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cluster bridge")
	}
	defer cluster.Close()

	router := api.NewRouter(cfg, hub, verifier, cluster.Status())
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree.AddMessagingService(services.NewRelayHubService(hub))
	if cluster.Bridge != nil {
		tree.AddMessagingService(services.NewClusterBridgeService(cluster.Bridge, cfg.Server.ShutdownTimeout))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Relay stopped gracefully")
}

// initAuth returns the upgrade verifier for AUTH_MODE=jwt, or nil.
func initAuth(cfg *config.Config) *auth.JWTVerifier {
	if cfg.Security.AuthMode != "jwt" {
		if cfg.ShouldWarnAboutAuth() {
			logging.Warn().Msg("AUTH_MODE=none in production: clients may register any user id")
		} else {
			logging.Info().Msg("Upgrade authentication disabled (AUTH_MODE=none)")
		}
		return nil
	}

	verifier, err := auth.NewJWTVerifier(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT verifier")
	}
	logging.Info().Str("identity_claim", cfg.Security.IdentityClaim).Msg("JWT upgrade authentication enabled")
	return verifier
}
