// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/switchboard/internal/config"
	"github.com/tomtom215/switchboard/internal/logging"
	"github.com/tomtom215/switchboard/internal/metrics"
)

// Publish results recorded in metrics.
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultBreakerOpen = "breaker_open"
)

// ErrBridgeClosed is returned when publishing on a closed bridge.
var ErrBridgeClosed = errors.New("cluster bridge closed")

// LocalRelay is the inbound side of a relay hub: what a peer instance may
// ask this instance to do.
type LocalRelay interface {
	DeliverDirect(recipientID, event string, frame []byte) bool
	DeliverRoom(roomID, event string, frame []byte) int
	ReleaseClaim(userID string, at time.Time) bool
}

// Bridge connects relay instances over a single core NATS subject. Every
// instance receives every envelope and acts only on the users and rooms it
// holds locally. Nothing is persisted; an envelope published while a peer is
// disconnected is lost for that peer.
type Bridge struct {
	cfg    config.ClusterConfig
	nodeID string
	local  LocalRelay

	conn       *natsgo.Conn
	publisher  *wmNats.Publisher
	subscriber *wmNats.Subscriber
	breaker    *gobreaker.CircuitBreaker[interface{}]
	log        zerolog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewBridge connects to cfg.URL and prepares the publisher and subscriber.
// Call Start to begin consuming.
func NewBridge(cfg config.ClusterConfig, local LocalRelay) (*Bridge, error) {
	if local == nil {
		return nil, fmt.Errorf("local relay is required")
	}

	nodeID := cfg.NodeID
	if nodeID == "" {
		nodeID = "relay-" + uuid.NewString()[:8]
	}

	log := logging.WithComponent("cluster-bridge").With().Str("node_id", nodeID).Logger()
	wmLogger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("cluster-bridge"))

	conn, err := natsgo.Connect(cfg.URL,
		natsgo.Name(nodeID),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		natsgo.ErrorHandler(func(_ *natsgo.Conn, sub *natsgo.Subscription, err error) {
			ev := log.Error().Err(err)
			if sub != nil {
				ev = ev.Str("subject", sub.Subject)
			}
			ev.Msg("NATS error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	pubCfg := wmNats.PublisherConfig{
		URL:               cfg.URL,
		Marshaler:         &wmNats.NATSMarshaler{},
		SubjectCalculator: wmNats.DefaultSubjectCalculator,
		JetStream:         wmNats.JetStreamConfig{Disabled: true},
	}
	publisher, err := wmNats.NewPublisherWithNatsConn(conn, pubCfg.GetPublisherPublishConfig(), wmLogger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	// One subscriber and no queue group: every instance must see every envelope.
	subCfg := wmNats.SubscriberConfig{
		URL:               cfg.URL,
		SubscribersCount:  1,
		CloseTimeout:      5 * time.Second,
		AckWaitTimeout:    5 * time.Second,
		Unmarshaler:       &wmNats.NATSMarshaler{},
		SubjectCalculator: wmNats.DefaultSubjectCalculator,
		JetStream:         wmNats.JetStreamConfig{Disabled: true},
	}
	subscriber, err := wmNats.NewSubscriberWithNatsConn(conn, subCfg.GetSubscriberSubscriptionConfig(), wmLogger)
	if err != nil {
		_ = publisher.Close()
		conn.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Bridge{
		cfg:        cfg,
		nodeID:     nodeID,
		local:      local,
		conn:       conn,
		publisher:  publisher,
		subscriber: subscriber,
		breaker: NewCircuitBreaker(BreakerConfig{
			Name:             "cluster-publish",
			FailureThreshold: cfg.BreakerFailureThreshold,
			Timeout:          cfg.BreakerTimeout,
		}),
		log: log,
	}, nil
}

// NodeID returns this instance's identifier on the bus.
func (b *Bridge) NodeID() string {
	return b.nodeID
}

// IsConnected reports whether the NATS connection is up.
func (b *Bridge) IsConnected() bool {
	return b.conn.IsConnected()
}

// IsRunning reports whether the bridge is consuming.
func (b *Bridge) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Start subscribes to the cluster subject and consumes in the background.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBridgeClosed
	}
	if b.running {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	messages, err := b.subscriber.Subscribe(subCtx, b.cfg.Subject)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to %s: %w", b.cfg.Subject, err)
	}

	// Make sure the server has registered interest before returning, so
	// envelopes published right after Start are not missed.
	if err := b.conn.FlushTimeout(5 * time.Second); err != nil {
		b.log.Warn().Err(err).Msg("flush after subscribe failed")
	}

	b.cancel = cancel
	b.running = true
	b.wg.Add(1)
	go b.consume(messages)

	b.log.Info().Str("subject", b.cfg.Subject).Msg("cluster bridge started")
	return nil
}

// Shutdown stops consuming. The connection stays open until Close.
func (b *Bridge) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info().Msg("cluster bridge stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops consuming and releases the NATS connection.
func (b *Bridge) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := b.Shutdown(ctx)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return shutdownErr
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	if shutdownErr != nil {
		errs = append(errs, shutdownErr)
	}
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close subscriber: %w", err))
	}
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	b.conn.Close()
	return errors.Join(errs...)
}

func (b *Bridge) consume(messages <-chan *message.Message) {
	defer b.wg.Done()
	for msg := range messages {
		b.handle(msg)
		msg.Ack()
	}
}

func (b *Bridge) handle(msg *message.Message) {
	env, err := UnmarshalEnvelope(msg.Payload)
	if err != nil {
		b.log.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping invalid cluster envelope")
		return
	}
	if env.Origin == b.nodeID {
		return
	}

	metrics.RecordClusterReceive(string(env.Kind))

	switch env.Kind {
	case KindDirect:
		if b.local.DeliverDirect(env.Target, env.Event, env.Frame) {
			metrics.RecordEventRelayed(env.Event)
		}
	case KindRoom:
		if n := b.local.DeliverRoom(env.Target, env.Event, env.Frame); n > 0 {
			metrics.RecordEventRelayed(env.Event)
		}
	case KindClaim:
		if b.local.ReleaseClaim(env.Target, time.Unix(0, env.At)) {
			b.log.Debug().Str("user_id", env.Target).Str("origin", env.Origin).Msg("released local registration")
		}
	}
}

// PublishDirect forwards a frame for a recipient not connected here.
func (b *Bridge) PublishDirect(recipientID, event string, frame []byte) {
	b.publish(&Envelope{Kind: KindDirect, Target: recipientID, Event: event, Frame: frame})
}

// PublishRoom forwards a room frame to the members held by peer instances.
func (b *Bridge) PublishRoom(roomID, event string, frame []byte) {
	b.publish(&Envelope{Kind: KindRoom, Target: roomID, Event: event, Frame: frame})
}

// PublishClaim announces that userID registered here at the given time.
func (b *Bridge) PublishClaim(userID string, at time.Time) {
	b.publish(&Envelope{Kind: KindClaim, Target: userID, At: at.UnixNano()})
}

func (b *Bridge) publish(env *Envelope) {
	kind := string(env.Kind)
	if err := b.Publish(env); err != nil {
		result := ResultError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = ResultBreakerOpen
		}
		metrics.RecordClusterPublish(kind, result)
		b.log.Warn().Err(err).Str("kind", kind).Str("target", env.Target).Msg("cluster publish failed")
		return
	}
	metrics.RecordClusterPublish(kind, ResultOK)
}

// Publish stamps env with this node's origin and sends it through the
// circuit breaker.
func (b *Bridge) Publish(env *Envelope) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBridgeClosed
	}

	env.Origin = b.nodeID
	if env.At == 0 {
		env.At = time.Now().UnixNano()
	}
	if err := env.Validate(); err != nil {
		return err
	}
	payload, err := MarshalEnvelope(env)
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	_, err = b.breaker.Execute(func() (interface{}, error) {
		if !b.conn.IsConnected() {
			return nil, natsgo.ErrConnectionClosed
		}
		return nil, b.publisher.Publish(b.cfg.Subject, msg)
	})
	return err
}
