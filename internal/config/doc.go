// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package config loads and validates relay configuration.

# Configuration Sources

Configuration is layered with koanf; later sources override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. YAML file from CONFIG_PATH, ./config.yaml or /etc/switchboard/config.yaml
 3. Environment variables listed below

Unknown environment variables are ignored.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 0.0.0.0:8080)
  - HTTP_TIMEOUT: read/write timeout for plain HTTP routes (default 30s)
  - SHUTDOWN_TIMEOUT: graceful shutdown budget (default 10s)
  - ENVIRONMENT: development, staging, production

Security:
  - AUTH_MODE: none (trust client-supplied user ids) or jwt
  - JWT_SECRET, JWT_IDENTITY_CLAIM
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated

Relay:
  - RELAY_SEND_BUFFER, RELAY_MAX_MESSAGE_SIZE
  - RELAY_EVENT_RATE, RELAY_EVENT_BURST (0 rate disables flood control)
  - RELAY_PONG_WAIT, RELAY_WRITE_WAIT

Cluster:
  - CLUSTER_ENABLED, CLUSTER_SUBJECT, CLUSTER_NODE_ID
  - NATS_URL, NATS_EMBEDDED, NATS_EMBEDDED_HOST, NATS_EMBEDDED_PORT
  - NATS_MAX_RECONNECTS, NATS_RECONNECT_WAIT
  - CLUSTER_BREAKER_THRESHOLD, CLUSTER_BREAKER_TIMEOUT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	srv := &http.Server{Addr: cfg.Server.Addr()}
*/
package config
