// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEventReceived(t *testing.T) {
	before := testutil.ToFloat64(RelayEventsReceived.WithLabelValues("register"))
	RecordEventReceived("register", true)
	if got := testutil.ToFloat64(RelayEventsReceived.WithLabelValues("register")); got != before+1 {
		t.Errorf("register count = %v, want %v", got, before+1)
	}

	unknownBefore := testutil.ToFloat64(RelayEventsReceived.WithLabelValues("unknown"))
	RecordEventReceived("drop-table", false)
	if got := testutil.ToFloat64(RelayEventsReceived.WithLabelValues("unknown")); got != unknownBefore+1 {
		t.Errorf("unknown count = %v, want %v", got, unknownBefore+1)
	}
}

func TestRecordEventDropped(t *testing.T) {
	reasons := []string{DropOffline, DropMalformed, DropRateLimited, DropBufferFull, DropUnauthorized}
	for _, reason := range reasons {
		t.Run(reason, func(t *testing.T) {
			before := testutil.ToFloat64(RelayEventsDropped.WithLabelValues(reason))
			RecordEventDropped(reason)
			if got := testutil.ToFloat64(RelayEventsDropped.WithLabelValues(reason)); got != before+1 {
				t.Errorf("%s drops = %v, want %v", reason, got, before+1)
			}
		})
	}
}

func TestTrackConnection(t *testing.T) {
	before := testutil.ToFloat64(RelayConnections)
	TrackConnection(true)
	TrackConnection(true)
	TrackConnection(false)
	if got := testutil.ToFloat64(RelayConnections); got != before+1 {
		t.Errorf("relay_connections = %v, want %v", got, before+1)
	}
	TrackConnection(false)
}

func TestSetPresence(t *testing.T) {
	SetPresence(3, 2)
	if got := testutil.ToFloat64(RelayRegisteredUsers); got != 3 {
		t.Errorf("relay_registered_users = %v, want 3", got)
	}
	if got := testutil.ToFloat64(RelayRooms); got != 2 {
		t.Errorf("relay_rooms = %v, want 2", got)
	}
}

func TestRecordClusterPublish(t *testing.T) {
	before := testutil.ToFloat64(ClusterPublished.WithLabelValues("direct", "ok"))
	RecordClusterPublish("direct", "ok")
	if got := testutil.ToFloat64(ClusterPublished.WithLabelValues("direct", "ok")); got != before+1 {
		t.Errorf("published = %v, want %v", got, before+1)
	}

	SetClusterBreakerState(2)
	if got := testutil.ToFloat64(ClusterBreakerState); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/stats", "200"))
	RecordAPIRequest("GET", "/api/v1/stats", "200", 3*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/stats", "200")); got != before+1 {
		t.Errorf("api_requests_total = %v, want %v", got, before+1)
	}
	if n := testutil.CollectAndCount(APIRequestDuration); n == 0 {
		t.Error("expected api_request_duration_seconds samples")
	}
}
