// Package metrics exposes Prometheus instruments for the gateway's fetches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "racebot"

// FetchMetrics implements httpclient.Observer.
type FetchMetrics struct {
	attempts  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	exhausted *prometheus.CounterVec
}

// NewFetchMetrics creates the fetch instruments and registers them with reg.
func NewFetchMetrics(reg prometheus.Registerer) (*FetchMetrics, error) {
	m := &FetchMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ergast",
			Name:      "fetch_attempts_total",
			Help:      "Number of upstream fetch attempts by resource kind and outcome",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ergast",
			Name:      "fetch_attempt_duration_seconds",
			Help:      "Duration of single upstream fetch attempts in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ergast",
			Name:      "fetch_exhausted_total",
			Help:      "Number of fetches that failed on every attempt",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.duration, m.exhausted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveAttempt records one attempt.
func (m *FetchMetrics) ObserveAttempt(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveExhausted records a fetch that ran out of attempts.
func (m *FetchMetrics) ObserveExhausted(kind string) {
	if m == nil {
		return
	}
	m.exhausted.WithLabelValues(kind).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
