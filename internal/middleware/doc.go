// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package middleware provides HTTP middleware shared by the relay's routes.

Key Components:

  - RequestID: UUID-based request tracking, wired into the logging context
  - PrometheusMetrics: request count, latency and in-flight instrumentation

Both are chi-compatible (func(http.Handler) http.Handler):

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics keeps the wrapped writer hijackable so it can sit in front
of the WebSocket upgrade route.
*/
package middleware
