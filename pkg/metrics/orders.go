package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics tracks material order lifecycle transitions.
type OrderMetrics struct {
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewOrderMetrics registers the order counters on reg. A nil registerer
// yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "material_order_transitions_total",
		Help: "Material order lifecycle transitions by kind.",
	}, []string{"transition"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "material_order_notifications_total",
		Help: "Order notifications by kind and outcome.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(transitions, notifications)
	return &OrderMetrics{
		transitions:   transitions,
		notifications: notifications,
	}
}

// IncTransition counts a committed transition such as "created" or "received".
func (m *OrderMetrics) IncTransition(transition string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(transition)).Inc()
}

// ObserveNotification counts a notification attempt; outcome is "sent" or "failed".
func (m *OrderMetrics) ObserveNotification(kind, outcome string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}
