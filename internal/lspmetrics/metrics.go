// Package lspmetrics instruments Connection activity with Prometheus
// counters/gauges, built the same way internal/adapter/inbound/http's
// metrics.go instruments the HTTP transport: promauto.With(reg) against
// an injected Registerer so callers control the registry lifetime.
package lspmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for a Connection's activity.
type Metrics struct {
	BytesSent        prometheus.Counter
	BytesReceived    prometheus.Counter
	StateTransitions *prometheus.CounterVec
	ActiveConns      prometheus.Gauge
	ProtocolErrors   *prometheus.CounterVec
}

// defaultNamespace is used when New is called with an empty namespace.
const defaultNamespace = "lspframe"

// New creates and registers the collectors with reg, prefixed under
// namespace (falling back to "lspframe" when empty).
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &Metrics{
		BytesSent: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Total bytes emitted by Send/SendJSON.",
		}),
		BytesReceived: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Total bytes fed in via Receive.",
		}),
		StateTransitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total state machine transitions, by role and resulting state.",
		}, []string{"role", "state"}),
		ActiveConns: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of live Connection instances tracked via RecordOpen/RecordClose.",
		}),
		ProtocolErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Total ProtocolError occurrences, by error code.",
		}, []string{"code"}),
	}
}

// RecordOpen marks a new Connection as live.
func (m *Metrics) RecordOpen() {
	if m == nil {
		return
	}
	m.ActiveConns.Inc()
}

// RecordClose marks a Connection as no longer live.
func (m *Metrics) RecordClose() {
	if m == nil {
		return
	}
	m.ActiveConns.Dec()
}

// RecordTransition records a state machine transition.
func (m *Metrics) RecordTransition(role, state string) {
	if m == nil {
		return
	}
	m.StateTransitions.WithLabelValues(role, state).Inc()
}

// RecordBytesSent adds n to the outbound byte counter.
func (m *Metrics) RecordBytesSent(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesSent.Add(float64(n))
}

// RecordBytesReceived adds n to the inbound byte counter.
func (m *Metrics) RecordBytesReceived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesReceived.Add(float64(n))
}

// RecordProtocolError increments the counter for the given error code.
func (m *Metrics) RecordProtocolError(code string) {
	if m == nil {
		return
	}
	m.ProtocolErrors.WithLabelValues(code).Inc()
}
