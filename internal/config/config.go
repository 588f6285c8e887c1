// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the relay process.
//
// Sections:
//   - Server: HTTP listener and shutdown behaviour
//   - Security: upgrade authentication, CORS and upgrade rate limiting
//   - Relay: per-connection buffers, keepalive and flood control
//   - Cluster: optional NATS bridge between relay instances
//   - Logging: log level and output format
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Relay    RelayConfig    `koanf:"relay"`
	Cluster  ClusterConfig  `koanf:"cluster"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds upgrade-time security settings.
//
// Environment Variables:
//   - AUTH_MODE: none or jwt (default: none)
//   - JWT_SECRET: HMAC secret shared with the token issuer (required for jwt)
//   - JWT_IDENTITY_CLAIM: claim carrying the user id (default: _id, falls back to sub)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: per-IP upgrade limit
//   - DISABLE_RATE_LIMIT: turn the upgrade limit off
//   - CORS_ORIGINS: comma-separated allowed origins
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	IdentityClaim     string        `koanf:"identity_claim"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// RelayConfig tunes each relay connection.
type RelayConfig struct {
	// SendBufferSize is the per-connection outbound queue length. A full
	// queue drops further messages for that connection.
	SendBufferSize int `koanf:"send_buffer_size"`

	// MaxMessageSize caps a single inbound frame in bytes.
	MaxMessageSize int64 `koanf:"max_message_size"`

	// EventRate is the sustained inbound events per second allowed per
	// connection; zero disables flood control.
	EventRate float64 `koanf:"event_rate"`

	// EventBurst is the token bucket size for EventRate.
	EventBurst int `koanf:"event_burst"`

	PongWait  time.Duration `koanf:"pong_wait"`
	WriteWait time.Duration `koanf:"write_wait"`
}

// ClusterConfig configures the optional NATS bridge that lets several relay
// instances serve one user population.
type ClusterConfig struct {
	Enabled bool `koanf:"enabled"`

	// URL of the NATS server. Ignored when EmbeddedServer is true.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server (single host or development).
	EmbeddedServer bool   `koanf:"embedded_server"`
	EmbeddedHost   string `koanf:"embedded_host"`
	EmbeddedPort   int    `koanf:"embedded_port"`

	// Subject shared by all instances.
	Subject string `koanf:"subject"`

	// NodeID identifies this instance on the bus; generated when empty.
	NodeID string `koanf:"node_id"`

	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// Circuit breaker around publishes.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
