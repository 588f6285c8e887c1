// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/switchboard/internal/config"
	"github.com/tomtom215/switchboard/internal/websocket"
)

// mockContextHub is a test double for ContextHub.
type mockContextHub struct {
	runErr   error
	runCount atomic.Int32
}

func (m *mockContextHub) RunWithContext(ctx context.Context) error {
	m.runCount.Add(1)
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockContextHub) RunCount() int {
	return int(m.runCount.Load())
}

func TestRelayHubService_Interface(t *testing.T) {
	var _ suture.Service = (*RelayHubService)(nil)
	var _ ContextHub = (*websocket.Hub)(nil)
}

func TestNewRelayHubService(t *testing.T) {
	hub := &mockContextHub{}
	svc := NewRelayHubService(hub)

	if svc.hub != hub {
		t.Error("hub not assigned correctly")
	}
	if svc.String() != "relay-hub" {
		t.Errorf("expected 'relay-hub', got %q", svc.String())
	}
}

func TestRelayHubService_Serve(t *testing.T) {
	t.Run("returns context error on cancellation", func(t *testing.T) {
		hub := &mockContextHub{}
		svc := NewRelayHubService(hub)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Error("Serve did not return after context cancellation")
		}

		if hub.RunCount() != 1 {
			t.Errorf("expected 1 run, got %d", hub.RunCount())
		}
	})

	t.Run("propagates hub errors", func(t *testing.T) {
		expectedErr := errors.New("hub startup error")
		svc := NewRelayHubService(&mockContextHub{runErr: expectedErr})

		if err := svc.Serve(context.Background()); !errors.Is(err, expectedErr) {
			t.Errorf("expected %v, got %v", expectedErr, err)
		}
	})
}

func TestRelayHubService_RealHubUnderSupervisor(t *testing.T) {
	hub := websocket.NewHub(config.RelayConfig{
		SendBufferSize: 8,
		MaxMessageSize: 4096,
		PongWait:       time.Second,
		WriteWait:      time.Second,
	})

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewRelayHubService(hub))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	var running bool
	for i := 0; i < 50; i++ {
		if hub.IsRunning() {
			running = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !running {
		t.Fatal("hub was not started by the supervisor")
	}

	cancel()
	<-errCh

	if hub.IsRunning() {
		t.Error("hub still running after supervisor stopped")
	}
}
