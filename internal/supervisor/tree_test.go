// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitUntil(cond func() bool) bool {
	for i := 0; i < 100; i++ {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("creates hierarchical supervisor tree", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  10 * time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Error("root supervisor should not be nil")
		}
	})

	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		want := DefaultTreeConfig()
		if got := tree.Config(); got != want {
			t.Errorf("Config() = %+v, want %+v", got, want)
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	t.Run("starts services in both layers and stops them", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{
			FailureBackoff:  100 * time.Millisecond,
			ShutdownTimeout: time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		hub := newMockService("relay-hub")
		api := newMockService("http-server")
		tree.AddMessagingService(hub)
		tree.AddAPIService(api)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := tree.ServeBackground(ctx)

		if !waitUntil(func() bool { return hub.StartCount() >= 1 && api.StartCount() >= 1 }) {
			t.Fatal("services were not started")
		}

		cancel()
		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("tree did not shut down in time")
		}

		if hub.StopCount() != hub.StartCount() || api.StopCount() != api.StartCount() {
			t.Error("every started service should have stopped")
		}

		report, err := tree.UnstoppedServiceReport()
		if err != nil {
			t.Fatalf("UnstoppedServiceReport: %v", err)
		}
		if len(report) != 0 {
			t.Errorf("unstopped services: %v", report)
		}
	})

	t.Run("Serve returns on cancellation", func(t *testing.T) {
		tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := tree.Serve(ctx)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSupervisorTreeRestartsFailingService(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	flaky := newMockService("cluster-bridge")
	flaky.setFailCount(2)
	stable := newMockService("http-server")
	tree.AddMessagingService(flaky)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	if !waitUntil(func() bool { return flaky.StartCount() >= 3 }) {
		t.Errorf("flaky service started %d times, want at least 3", flaky.StartCount())
	}
	if stable.StartCount() != 1 {
		t.Errorf("api layer restarted %d times, want 1", stable.StartCount())
	}

	cancel()
	<-errCh
}
