// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package metrics exposes the relay's Prometheus instrumentation.

All collectors are registered on the default registry through promauto and
served at /metrics by the API router.

# Available Metrics

Relay:
  - relay_connections: open WebSocket connections
  - relay_registered_users, relay_rooms: local presence sizes
  - relay_events_received_total{event}: inbound events
  - relay_events_relayed_total{event}: outbound events queued to a recipient
  - relay_events_dropped_total{reason}: offline, malformed, rate_limited,
    buffer_full, unauthorized
  - relay_cleanups_total: registry removals from logout or disconnect

Cluster:
  - relay_cluster_published_total{kind,result}
  - relay_cluster_received_total{kind}
  - relay_cluster_breaker_state

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests, api_rate_limit_hits_total

Identities never appear in labels.
*/
package metrics
