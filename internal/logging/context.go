// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
	connIDKey        contextKey = "conn_id"
)

// GenerateCorrelationID returns a short correlation ID (first 8 characters of a UUID).
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a full UUID request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID returns a context carrying the correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation ID, or "" when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a context carrying the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithConnID returns a context carrying a relay connection ID.
// Connection-scoped log lines then include conn_id automatically.
func ContextWithConnID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, connIDKey, id)
}

// ConnIDFromContext returns the connection ID and whether one was set.
func ConnIDFromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(connIDKey).(uint64)
	return id, ok
}

// Ctx returns the global logger enriched with correlation_id, request_id and
// conn_id when the context carries them.
//
//	logging.Ctx(ctx).Warn().Str("event", name).Msg("dropping malformed event")
func Ctx(ctx context.Context) *zerolog.Logger {
	lc := With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if id, ok := ConnIDFromContext(ctx); ok {
		lc = lc.Uint64("conn_id", id)
	}
	l := lc.Logger()
	return &l
}

// WithComponent creates a child logger tagged with a component field.
//
//	clusterLog := logging.WithComponent("cluster-bridge")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
