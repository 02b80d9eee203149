package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle outcomes.
type OrderMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// NewOrderMetrics registers the order counters on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_orders_created_total",
		Help: "Orders created with stock reserved.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_order_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_order_rejections_total",
		Help: "Order mutations rejected before commit, by reason.",
	}, []string{"reason"})
	reg.MustRegister(created, transitions, rejections)
	return &OrderMetrics{
		created:     created,
		transitions: transitions,
		rejections:  rejections,
	}
}

func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncTransition records a move into status.
func (m *OrderMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncRejected records a failed mutation, e.g. "insufficient_stock".
func (m *OrderMetrics) IncRejected(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
