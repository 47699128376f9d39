// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	m.ObserveEvent("submit")
	m.ObserveTransition("received")
	m.ObserveHandler("submit", nil, time.Millisecond)
	m.ObserveAutocomplete(3)
	m.ObserveResolution("exact", OutcomeOK)
	m.ObserveStore("upsert", nil)
}

func TestInFlightFollowsTransitions(t *testing.T) {
	m := New(prometheus.NewRegistry())

	for _, state := range []string{"received", "cache_applied", "handler_spawned", "handler_spawned", "completed"} {
		m.ObserveTransition(state)
	}
	if got := testutil.ToFloat64(m.HandlersInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.ObserveTransition("failed")
	if got := testutil.ToFloat64(m.HandlersInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.DispatchTransitions.WithLabelValues("handler_spawned")); got != 2 {
		t.Errorf("handler_spawned transitions = %v, want 2", got)
	}
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveEvent("submit")
	m.ObserveEvent("submit")
	m.ObserveEvent("member")
	m.ObserveResolution("confirmed", OutcomeOK)
	m.ObserveResolution("exact", "user_input")
	m.ObserveStore("upsert", nil)
	m.ObserveStore("upsert", errors.New("disk full"))

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"submit events", m.DispatchEvents.WithLabelValues("submit"), 2},
		{"member events", m.DispatchEvents.WithLabelValues("member"), 1},
		{"confirmed ok", m.Resolutions.WithLabelValues("confirmed", OutcomeOK), 1},
		{"exact user input", m.Resolutions.WithLabelValues("exact", "user_input"), 1},
		{"upsert ok", m.StoreOperations.WithLabelValues("upsert", OutcomeOK), 1},
		{"upsert error", m.StoreOperations.WithLabelValues("upsert", OutcomeError), 1},
	}
	for _, test := range tests {
		if got := testutil.ToFloat64(test.collector); got != test.want {
			t.Errorf("%s = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestHistograms(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	m.ObserveAutocomplete(10)
	m.ObserveHandler("autocomplete", nil, 3*time.Millisecond)

	if count := testutil.CollectAndCount(m.HandlerDuration, "timezoner_handler_duration_seconds"); count != 1 {
		t.Errorf("handler duration series = %d, want 1", count)
	}
	if count := testutil.CollectAndCount(m.AutocompleteResults); count != 1 {
		t.Errorf("autocomplete histogram series = %d, want 1", count)
	}
}

func TestHandlerExposition(t *testing.T) {
	registry := NewRegistry()
	m := New(registry)
	m.ObserveEvent("help")

	server := httptest.NewServer(Handler(registry))
	defer server.Close()

	response, err := server.Client().Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`timezoner_dispatch_events_total{kind="help"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestDoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)
	defer func() {
		if recover() == nil {
			t.Error("registering the instruments twice should panic")
		}
	}()
	New(registry)
}
