package hasura

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for upstream calls
const (
	outcomeOK       = "ok"
	outcomeNetwork  = "network_error"
	outcomeUpstream = "upstream_error"
)

// Metrics records upstream call counts and latency. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gifzoo",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "GraphQL requests sent to Hasura, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gifzoo",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of GraphQL requests sent to Hasura.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func (m *Metrics) observe(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}

	outcome := outcomeOK
	switch err.(type) {
	case nil:
	case *NetworkError:
		outcome = outcomeNetwork
	default:
		outcome = outcomeUpstream
	}

	m.requests.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}
