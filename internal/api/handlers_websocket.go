// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/switchboard/internal/auth"
	"github.com/tomtom215/switchboard/internal/logging"
)

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (router *Router) getUpgrader() gorilla.Upgrader {
	return gorilla.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      router.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin applies the CORS allow-list to browser upgrades.
// Requests without an Origin header come from native clients and are let
// through; upgrade authentication still applies to them.
func (router *Router) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowedOrigin := range router.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Ctx(r.Context()).Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the request and hands the connection to the relay hub.
// With AUTH_MODE=jwt the token is verified before the upgrade and its
// identity is bound to the connection.
func (router *Router) WebSocket(w http.ResponseWriter, r *http.Request) {
	if !router.hub.IsRunning() {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Relay unavailable", nil)
		return
	}

	var identity string
	if router.verifier != nil {
		id, err := router.verifier.VerifyRequest(r)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				message = "Token required"
			}
			respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, message, err)
			return
		}
		identity = id
	}

	upgrader := router.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	// The request context ends when this handler returns; the connection
	// keeps its logging values.
	ctx := context.WithoutCancel(r.Context())
	if _, err := router.hub.Serve(ctx, conn, identity); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("relay refused connection")
	}
}
