// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/switchboard/internal/logging"
	"github.com/tomtom215/switchboard/internal/metrics"
)

// clientIDCounter generates unique, monotonically increasing IDs for clients.
// Shutdown closes clients in ID order.
var clientIDCounter atomic.Uint64

// Client is one relay connection. It owns a read goroutine that dispatches
// inbound events and a write goroutine that drains the send buffer.
//
// send is never closed; done signals shutdown to both pumps so that late
// deliveries from other goroutines cannot panic.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	// limiter is nil when flood control is disabled.
	limiter *rate.Limiter

	// identity is the token-bound user id, or "" when upgrade auth is off.
	identity string

	// registeredAt is the UnixNano of the last successful register.
	registeredAt atomic.Int64

	ctx context.Context
}

// NewClient creates a Client with a unique ID. identity is the user id
// proven at upgrade time, or "" when upgrade authentication is disabled.
// ctx supplies logging values only.
func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn, identity string) *Client {
	id := clientIDCounter.Add(1)
	c := &Client{
		id:       id,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.cfg.SendBufferSize),
		done:     make(chan struct{}),
		identity: identity,
		ctx:      logging.ContextWithConnID(ctx, id),
	}
	if hub.cfg.EventRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(hub.cfg.EventRate), hub.cfg.EventBurst)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Identity returns the token-bound user id, if any.
func (c *Client) Identity() string {
	return c.identity
}

// Done is closed once the client starts shutting down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// enqueue queues a frame without blocking. A full buffer drops the frame.
func (c *Client) enqueue(event string, frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		metrics.RecordEventRelayed(event)
		return true
	case <-c.done:
		return false
	default:
		metrics.RecordEventDropped(metrics.DropBufferFull)
		logging.Ctx(c.ctx).Warn().
			Str("event", event).
			Int("buffer", cap(c.send)).
			Msg("send buffer full, dropping event")
		return false
	}
}

// close starts shutdown. Safe to call from any goroutine, any number of times.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump reads frames and dispatches them in arrival order. Its exit is the
// single point where the connection's presence state is cleaned up.
func (c *Client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		c.close()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	cfg := c.hub.cfg
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait)); err != nil {
		logging.Ctx(c.ctx).Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Ctx(c.ctx).Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		if msgType != websocket.TextMessage {
			metrics.RecordEventDropped(metrics.DropMalformed)
			logging.Ctx(c.ctx).Warn().Int("frame_type", msgType).Msg("dropping non-text frame")
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			metrics.RecordEventDropped(metrics.DropRateLimited)
			logging.Ctx(c.ctx).Debug().Msg("event rate exceeded, dropping event")
			continue
		}

		c.hub.dispatch(c, data)
	}
}

// writePump drains the send buffer and keeps the connection alive with pings.
func (c *Client) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker((cfg.PongWait * 9) / 10)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
				logging.Ctx(c.ctx).Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logging.Ctx(c.ctx).Debug().Err(err).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
				logging.Ctx(c.ctx).Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(cfg.WriteWait))
			return
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Serve wraps conn in a new client, attaches it and starts its pumps.
// The connection is closed when the hub refuses it.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, identity string) (*Client, error) {
	c := NewClient(ctx, h, conn, identity)
	if err := h.Attach(c); err != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "relay unavailable")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.WriteWait))
		_ = conn.Close()
		return nil, err
	}
	c.Start()
	return c, nil
}
