// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateRelay,
		c.validateCluster,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

var validAuthModes = map[string]bool{
	"none": true,
	"jwt":  true,
}

func (c *Config) validateSecurity() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}
	if c.Security.AuthMode == "jwt" {
		if err := c.validateJWTSecret(); err != nil {
			return err
		}
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	if c.Security.IdentityClaim == "" {
		return fmt.Errorf("JWT_IDENTITY_CLAIM must not be empty when AUTH_MODE is jwt")
	}
	return nil
}

// validateCORS rejects wildcard origins in production when tokens are in use,
// since any page could then open an authenticated relay socket.
func (c *Config) validateCORS() error {
	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with AUTH_MODE=%s; "+
			"set specific origins, e.g. CORS_ORIGINS=https://app.example.com", c.Security.AuthMode)
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutAuth reports a production deployment that trusts
// client-supplied identities.
func (c *Config) ShouldWarnAboutAuth() bool {
	return c.Security.AuthMode == "none" && c.IsProduction()
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

const (
	minSendBuffer     = 1
	maxSendBuffer     = 65536
	minMessageSize    = 1024
	maxMessageSize    = 16 * 1024 * 1024
	minKeepaliveWait  = time.Second
	maxKeepaliveWait  = 10 * time.Minute
	maxEventRateValue = 10000
)

func (c *Config) validateRelay() error {
	r := c.Relay
	if r.SendBufferSize < minSendBuffer || r.SendBufferSize > maxSendBuffer {
		return fmt.Errorf("RELAY_SEND_BUFFER must be between %d and %d", minSendBuffer, maxSendBuffer)
	}
	if r.MaxMessageSize < minMessageSize || r.MaxMessageSize > maxMessageSize {
		return fmt.Errorf("RELAY_MAX_MESSAGE_SIZE must be between %d and %d bytes", minMessageSize, maxMessageSize)
	}
	if r.EventRate < 0 || r.EventRate > maxEventRateValue {
		return fmt.Errorf("RELAY_EVENT_RATE must be between 0 and %d", maxEventRateValue)
	}
	if r.EventRate > 0 && r.EventBurst < 1 {
		return fmt.Errorf("RELAY_EVENT_BURST must be at least 1 when RELAY_EVENT_RATE is set")
	}
	if r.PongWait < minKeepaliveWait || r.PongWait > maxKeepaliveWait {
		return fmt.Errorf("RELAY_PONG_WAIT must be between %v and %v", minKeepaliveWait, maxKeepaliveWait)
	}
	if r.WriteWait < minKeepaliveWait || r.WriteWait > maxKeepaliveWait {
		return fmt.Errorf("RELAY_WRITE_WAIT must be between %v and %v", minKeepaliveWait, maxKeepaliveWait)
	}
	return nil
}

func (c *Config) validateCluster() error {
	if !c.Cluster.Enabled {
		return nil
	}
	if c.Cluster.EmbeddedServer {
		if c.Cluster.EmbeddedPort < -1 || c.Cluster.EmbeddedPort > 65535 {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between -1 (random) and 65535")
		}
	} else if err := validateNATSURL(c.Cluster.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.Cluster.Subject == "" || strings.ContainsAny(c.Cluster.Subject, " *>") {
		return fmt.Errorf("CLUSTER_SUBJECT must be a literal NATS subject without spaces or wildcards")
	}
	if c.Cluster.BreakerFailureThreshold < 1 {
		return fmt.Errorf("CLUSTER_BREAKER_THRESHOLD must be at least 1")
	}
	if c.Cluster.BreakerTimeout <= 0 {
		return fmt.Errorf("CLUSTER_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

// validateNATSURL accepts nats://, tls://, ws:// and wss:// URLs with a host.
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222, nats.example.com)")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// IsProduction reports ENVIRONMENT=production (or prod).
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment reports ENVIRONMENT=development, dev or unset.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder catches secrets copied verbatim from sample configs.
func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
