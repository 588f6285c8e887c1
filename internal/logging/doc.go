// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

// Package logging provides the zerolog-based structured logger shared by every
// Switchboard package.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int("port", 8080).Msg("relay listening")
//	logging.Err(err).Msg("upgrade failed")
//
// # Context Fields
//
// HTTP middleware stores a request ID and each relay connection stores its
// connection ID in the request context. Ctx(ctx) returns a logger carrying
// whichever of request_id, correlation_id and conn_id are present:
//
//	logging.Ctx(ctx).Warn().Str("event", "start-call").Msg("dropping malformed event")
//
// # slog Bridge
//
// SlogHandler adapts zerolog to log/slog for libraries that only accept an
// *slog.Logger (sutureslog for the supervisor tree, watermill for the cluster
// bridge).
//
// # Configuration
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
//
// Always finish an event chain with Msg or Send; an unterminated chain is
// never written.
package logging
