// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds timezoner's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timezoner"

// Outcome label values shared by several metrics.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics is the full instrument set. A nil *Metrics is valid and
// records nothing, so packages under test need no registry.
type Metrics struct {
	DispatchEvents      *prometheus.CounterVec
	DispatchTransitions *prometheus.CounterVec
	HandlersInFlight    prometheus.Gauge
	HandlerDuration     *prometheus.HistogramVec
	AutocompleteResults prometheus.Histogram
	Resolutions         *prometheus.CounterVec
	StoreOperations     *prometheus.CounterVec
}

// New creates the instruments and registers them on registerer.
func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		DispatchEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Inbound events consumed by the dispatch loop, by kind.",
		}, []string{"kind"}),
		DispatchTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "transitions_total",
			Help:      "Per-event lifecycle transitions, by state.",
		}, []string{"state"}),
		HandlersInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "handlers_in_flight",
			Help:      "Handler goroutines currently running.",
		}),
		HandlerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Handler wall time, by command and outcome.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"command", "outcome"}),
		AutocompleteResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "autocomplete_results",
			Help:      "Suggestions returned per autocomplete request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10},
		}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Timezone resolutions, by path (exact, confirmed) and outcome.",
		}, []string{"path", "outcome"}),
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Encrypted store operations, by op and outcome.",
		}, []string{"op", "outcome"}),
	}
}

// NewRegistry returns a registry with the Go runtime and process
// collectors already registered.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler serves gatherer in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveEvent counts one consumed event.
func (m *Metrics) ObserveEvent(kind string) {
	if m == nil {
		return
	}
	m.DispatchEvents.WithLabelValues(kind).Inc()
}

// ObserveTransition counts one lifecycle transition and keeps the
// in-flight gauge in step with spawned and finished handlers.
func (m *Metrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.DispatchTransitions.WithLabelValues(state).Inc()
	switch state {
	case "handler_spawned":
		m.HandlersInFlight.Inc()
	case "completed", "failed":
		m.HandlersInFlight.Dec()
	}
}

// ObserveHandler records one handler run.
func (m *Metrics) ObserveHandler(command string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HandlerDuration.WithLabelValues(command, outcome(err)).Observe(elapsed.Seconds())
}

// ObserveAutocomplete records the size of one suggestion list.
func (m *Metrics) ObserveAutocomplete(results int) {
	if m == nil {
		return
	}
	m.AutocompleteResults.Observe(float64(results))
}

// ObserveResolution counts one resolution. outcome is a resolve.Kind
// string or OutcomeOK.
func (m *Metrics) ObserveResolution(path, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(path, outcome).Inc()
}

// ObserveStore counts one store operation. Its signature matches
// tzstore.Config.Observe.
func (m *Metrics) ObserveStore(op string, err error) {
	if m == nil {
		return
	}
	m.StoreOperations.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
