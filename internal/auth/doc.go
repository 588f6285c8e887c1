// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

/*
Package auth verifies upgrade-time tokens when AUTH_MODE=jwt.

Tokens are issued by the platform's REST layer with a shared HMAC secret.
The relay only verifies them: the identity claim (JWT_IDENTITY_CLAIM, default
"_id", falling back to "sub") is bound to the connection, and a later
register event must name the same user id.

Token sources, in order:

 1. Authorization: Bearer <token>
 2. ?token=<token> (browsers cannot set headers on WebSocket upgrades)

Usage:

	verifier, err := auth.NewJWTVerifier(&cfg.Security)
	if err != nil {
	    return err
	}
	identity, err := verifier.VerifyRequest(r)
	if err != nil {
	    http.Error(w, "unauthorized", http.StatusUnauthorized)
	    return
	}

With AUTH_MODE=none no token is required and client-supplied user ids are
trusted.
*/
package auth
