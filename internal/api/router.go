// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/switchboard/internal/auth"
	"github.com/tomtom215/switchboard/internal/config"
	"github.com/tomtom215/switchboard/internal/middleware"
	"github.com/tomtom215/switchboard/internal/websocket"
)

// ClusterStatus reports the cluster bridge connection state.
type ClusterStatus interface {
	IsConnected() bool
}

// Router owns the HTTP surface: the WebSocket endpoint, health, stats and
// metrics.
type Router struct {
	config    *config.Config
	hub       *websocket.Hub
	verifier  *auth.JWTVerifier
	cluster   ClusterStatus
	chi       *ChiMiddleware
	startTime time.Time
}

// NewRouter creates a router. verifier is nil unless AUTH_MODE is jwt;
// cluster is nil unless the cluster bridge is enabled.
func NewRouter(cfg *config.Config, hub *websocket.Hub, verifier *auth.JWTVerifier, cluster ClusterStatus) *Router {
	return &Router{
		config:    cfg,
		hub:       hub,
		verifier:  verifier,
		cluster:   cluster,
		chi:       NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		startTime: time.Now(),
	}
}

// SetupChi builds the chi handler tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chi.CORS())

	r.With(router.chi.RateLimitUpgrades()).Get("/ws", router.WebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health/live", router.HealthLive)
		r.Get("/health/ready", router.HealthReady)
		r.Get("/stats", router.Stats)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
