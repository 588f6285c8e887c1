// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/switchboard/internal/websocket"
)

// ReadinessStatus is the body of the readiness probe.
type ReadinessStatus struct {
	Ready            bool  `json:"ready"`
	HubRunning       bool  `json:"hub_running"`
	ClusterEnabled   bool  `json:"cluster_enabled"`
	ClusterConnected *bool `json:"cluster_connected,omitempty"`
}

// StatsResponse carries aggregate relay counts. Identities are never exposed.
type StatsResponse struct {
	websocket.Stats
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// HealthLive reports that the process is alive, regardless of dependencies.
func (router *Router) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(router.startTime).Seconds(),
	})
}

// HealthReady returns 200 when the relay hub accepts connections and, with
// clustering enabled, the bridge is connected to NATS. Otherwise 503.
func (router *Router) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := ReadinessStatus{
		HubRunning:     router.hub.IsRunning(),
		ClusterEnabled: router.cluster != nil,
	}
	status.Ready = status.HubRunning

	if router.cluster != nil {
		connected := router.cluster.IsConnected()
		status.ClusterConnected = &connected
		status.Ready = status.Ready && connected
	}

	if !status.Ready {
		writeJSON(w, http.StatusServiceUnavailable, &APIResponse{
			Success: false,
			Data:    status,
			Error:   &APIError{Code: ErrCodeServiceUnavailable, Message: "Relay not ready"},
			Meta:    newMeta(r),
		})
		return
	}
	respondJSON(w, r, http.StatusOK, status)
}

// Stats returns connection, registration and room counts.
func (router *Router) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, StatsResponse{
		Stats:         router.hub.Stats(),
		UptimeSeconds: time.Since(router.startTime).Seconds(),
	})
}
