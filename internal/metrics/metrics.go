// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons for RelayEventsDropped.
const (
	DropOffline      = "offline"
	DropMalformed    = "malformed"
	DropRateLimited  = "rate_limited"
	DropBufferFull   = "buffer_full"
	DropUnauthorized = "unauthorized"
)

var (
	// Relay Metrics
	RelayConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections",
			Help: "Current number of open relay connections",
		},
	)

	RelayRegisteredUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_registered_users",
			Help: "Current number of users with a registered connection on this instance",
		},
	)

	RelayRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_rooms",
			Help: "Current number of non-empty rooms on this instance",
		},
	)

	RelayEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_received_total",
			Help: "Inbound events read from client connections",
		},
		[]string{"event"},
	)

	RelayEventsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_relayed_total",
			Help: "Outbound events queued to a recipient connection",
		},
		[]string{"event"},
	)

	RelayEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_dropped_total",
			Help: "Events dropped without delivery",
		},
		[]string{"reason"}, // offline, malformed, rate_limited, buffer_full, unauthorized
	)

	RelayCleanups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_cleanups_total",
			Help: "Registry removals triggered by logout or disconnect",
		},
	)

	// Cluster Metrics
	ClusterPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_cluster_published_total",
			Help: "Envelopes published to peer instances",
		},
		[]string{"kind", "result"}, // result: ok, error, breaker_open
	)

	ClusterReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_cluster_received_total",
			Help: "Envelopes received from peer instances",
		},
		[]string{"kind"},
	)

	ClusterBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_cluster_breaker_state",
			Help: "Cluster publish circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Upgrade requests rejected by the per-IP rate limiter",
		},
	)
)

// RecordEventReceived counts an inbound event by name. Unknown names are
// folded into "unknown" to keep label cardinality bounded.
func RecordEventReceived(event string, known bool) {
	if !known {
		event = "unknown"
	}
	RelayEventsReceived.WithLabelValues(event).Inc()
}

// RecordEventRelayed counts an outbound event queued to a connection.
func RecordEventRelayed(event string) {
	RelayEventsRelayed.WithLabelValues(event).Inc()
}

// RecordEventDropped counts a dropped event.
func RecordEventDropped(reason string) {
	RelayEventsDropped.WithLabelValues(reason).Inc()
}

// RecordCleanup counts a registry removal.
func RecordCleanup() {
	RelayCleanups.Inc()
}

// SetPresence publishes the current registry and room sizes.
func SetPresence(users, rooms int) {
	RelayRegisteredUsers.Set(float64(users))
	RelayRooms.Set(float64(rooms))
}

// TrackConnection adjusts the open connection gauge.
func TrackConnection(opened bool) {
	if opened {
		RelayConnections.Inc()
	} else {
		RelayConnections.Dec()
	}
}

// RecordClusterPublish counts a publish attempt by envelope kind and result.
func RecordClusterPublish(kind, result string) {
	ClusterPublished.WithLabelValues(kind, result).Inc()
}

// RecordClusterReceive counts an envelope received from a peer.
func RecordClusterReceive(kind string) {
	ClusterReceived.WithLabelValues(kind).Inc()
}

// SetClusterBreakerState records the breaker state as a number.
func SetClusterBreakerState(state float64) {
	ClusterBreakerState.Set(state)
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected upgrade.
func RecordRateLimitHit() {
	APIRateLimitHits.Inc()
}
