// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/switchboard/config.yaml",
	"/etc/switchboard/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			AuthMode:          "none",
			JWTSecret:         "",
			IdentityClaim:     "_id",
			RateLimitReqs:     60,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Relay: RelayConfig{
			SendBufferSize: 256,
			MaxMessageSize: 512 * 1024,
			EventRate:      50,
			EventBurst:     100,
			PongWait:       60 * time.Second,
			WriteWait:      10 * time.Second,
		},
		Cluster: ClusterConfig{
			Enabled:                 false,
			URL:                     "nats://127.0.0.1:4222",
			EmbeddedServer:          false,
			EmbeddedHost:            "127.0.0.1",
			EmbeddedPort:            4222,
			Subject:                 "switchboard.relay",
			NodeID:                  "",
			MaxReconnects:           -1,
			ReconnectWait:           2 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration in three layers, later layers winning:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. mapped environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_identity_claim":  "security.identity_claim",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Relay
	"relay_send_buffer":      "relay.send_buffer_size",
	"relay_max_message_size": "relay.max_message_size",
	"relay_event_rate":       "relay.event_rate",
	"relay_event_burst":      "relay.event_burst",
	"relay_pong_wait":        "relay.pong_wait",
	"relay_write_wait":       "relay.write_wait",

	// Cluster
	"cluster_enabled":           "cluster.enabled",
	"nats_url":                  "cluster.url",
	"nats_embedded":             "cluster.embedded_server",
	"nats_embedded_host":        "cluster.embedded_host",
	"nats_embedded_port":        "cluster.embedded_port",
	"cluster_subject":           "cluster.subject",
	"cluster_node_id":           "cluster.node_id",
	"nats_max_reconnects":       "cluster.max_reconnects",
	"nats_reconnect_wait":       "cluster.reconnect_wait",
	"cluster_breaker_threshold": "cluster.breaker_failure_threshold",
	"cluster_breaker_timeout":   "cluster.breaker_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
//	HTTP_PORT -> server.port
//	RELAY_EVENT_RATE -> relay.event_rate
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
