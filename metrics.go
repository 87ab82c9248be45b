package pushover

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus instrumentation for API calls. A nil *Metrics is
// valid and records nothing, so instrumentation stays opt-in.
type Metrics struct {
	apiCallsTotal   *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec
}

// NewMetrics creates metrics registered with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		apiCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pushover_api_calls_total",
				Help: "Total number of Pushover API calls",
			},
			[]string{"operation", "outcome"},
		),
		apiCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pushover_api_call_duration_seconds",
				Help:    "Pushover API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCall records one API call with its outcome and duration.
func (m *Metrics) RecordCall(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.apiCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
