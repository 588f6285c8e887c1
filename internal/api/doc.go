// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package api provides the relay's HTTP surface on a chi router.

# Routes

	GET /ws                    WebSocket upgrade into the relay hub
	GET /api/v1/health/live    liveness, always 200 while the process runs
	GET /api/v1/health/ready   200 when the hub runs (and NATS is connected)
	GET /api/v1/stats          connection, registered-user and room counts
	GET /metrics               Prometheus exposition

# Middleware

Every route gets a request ID (with logging context), real-IP extraction,
panic recovery, HTTP metrics and go-chi/cors. /ws is additionally limited per
client IP with go-chi/httprate (RATE_LIMIT_REQUESTS per RATE_LIMIT_WINDOW).

# Upgrade Authentication

With AUTH_MODE=jwt the token is taken from the Authorization header
("Bearer <token>") or the token query parameter, verified before the upgrade
and bound to the connection. A register event for any other user is then
dropped. Failed verification answers 401 and never upgrades.

# Responses

JSON endpoints share one envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "UNAUTHORIZED", "message": "..."}, "meta": {...}}
*/
package api
