// Package metrics exposes the prometheus collectors of the trust desk.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Decision outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics records HTTP traffic, officer decisions and extraction calls.
type Metrics struct {
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	decisions         *prometheus.CounterVec
	extractions       *prometheus.CounterVec
	extractionLatency prometheus.Histogram
}

// New registers the collectors on reg. A nil registerer yields a no-op Metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_http_requests_total",
			Help: "Total HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trust_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "route"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_decisions_total",
			Help: "Officer decisions by action and outcome.",
		}, []string{"action", "outcome"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_extractions_total",
			Help: "Free-text extraction calls by outcome.",
		}, []string{"outcome"}),
		extractionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trust_extraction_duration_seconds",
			Help:    "Latency of the extraction service.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.httpRequests, m.httpLatency, m.decisions, m.extractions, m.extractionLatency)
	return m
}

// ObserveHTTP records one completed request.
func (m *Metrics) ObserveHTTP(method, route string, status int, latency time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// IncDecision counts an approve, deny or override attempt.
func (m *Metrics) IncDecision(action string, err error) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(action), outcome(err)).Inc()
}

// ObserveExtraction records one extraction call.
func (m *Metrics) ObserveExtraction(err error, latency time.Duration) {
	if m == nil || m.extractions == nil {
		return
	}
	m.extractions.WithLabelValues(outcome(err)).Inc()
	m.extractionLatency.Observe(latency.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
