// Package metrics holds the prometheus instruments for the serving layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts interpretation requests and times them. The core engine
// stays metric-free; adapters record around their calls into it.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// New creates the instruments and registers them. Pass
// prometheus.DefaultRegisterer for the standard /metrics endpoint or a
// private registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mind_requests_total",
				Help: "Total interpretation requests by response status and selected tool",
			},
			[]string{"status", "tool"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "mind_request_duration_seconds",
				Help: "Interpretation latency by selected tool",
			},
			[]string{"tool"},
		),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

// Observe records one completed request. An empty tool (abstention, rejected
// input) is reported as "none" so failed requests still show up in the count.
func (m *Metrics) Observe(status, tool string, elapsed time.Duration) {
	if tool == "" {
		tool = "none"
	}
	m.Requests.WithLabelValues(status, tool).Inc()
	m.Duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}
