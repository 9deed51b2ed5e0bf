// Package metrics exports summarizer counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jinasum"

// Metrics holds the summarizer's collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	events    *prometheus.CounterVec
	attempts  *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	cacheSize *prometheus.GaugeVec
	latency   *prometheus.HistogramVec
}

// New creates and registers the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Inbound events by message type and routing decision",
		},
		[]string{"type", "action"},
	)

	m.attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_attempts_total",
			Help:      "Remote pipeline attempts by stage and result",
		},
		[]string{"stage", "result"},
	)

	m.outcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Finished summary and question requests by status",
		},
		[]string{"flow", "status"},
	)

	m.cacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Entries currently held by the in-memory caches",
		},
		[]string{"cache"},
	)

	m.latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_latency_seconds",
			Help:      "Latency of remote calls in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	m.registry.MustRegister(m.events, m.attempts, m.outcomes, m.cacheSize, m.latency)
	return m
}

// Handler serves the registry
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Event counts an inbound event
func (m *Metrics) Event(msgType, action string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(msgType, action).Inc()
}

// Attempt counts one remote call
func (m *Metrics) Attempt(stage string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.attempts.WithLabelValues(stage, result).Inc()
	m.latency.WithLabelValues(stage).Observe(seconds)
}

// Outcome counts a finished request
func (m *Metrics) Outcome(flow, status string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(flow, status).Inc()
}

// CacheSize records the size of a cache
func (m *Metrics) CacheSize(cache string, n int) {
	if m == nil {
		return
	}
	m.cacheSize.WithLabelValues(cache).Set(float64(n))
}
