package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WarehouseMetrics tracks order processing and stock movement.
type WarehouseMetrics struct {
	ordersCreated     *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	adjustments       *prometheus.CounterVec
	stockRejections   *prometheus.CounterVec
	itemsByStatus     *prometheus.GaugeVec
	outboxPending     prometheus.Gauge
}

// NewWarehouseMetrics registers the order and inventory collectors. A nil
// registerer yields a no-op collector.
func NewWarehouseMetrics(reg prometheus.Registerer) *WarehouseMetrics {
	if reg == nil {
		return &WarehouseMetrics{}
	}
	m := &WarehouseMetrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders committed, by direction.",
		}, []string{"type"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Persisted order status transitions.",
		}, []string{"from", "to"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "adjustments_total",
			Help:      "Item quantity changes, by movement reason.",
		}, []string{"reason"}),
		stockRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "stock_rejections_total",
			Help:      "Operations rejected because stock would go negative.",
		}, []string{"operation"}),
		itemsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "items",
			Help:      "Items per status as of the last snapshot.",
		}, []string{"status"}),
		outboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "pending_events",
			Help:      "Outbox rows waiting to be published as of the last snapshot.",
		}),
	}
	reg.MustRegister(m.ordersCreated, m.statusTransitions, m.adjustments, m.stockRejections, m.itemsByStatus, m.outboxPending)
	return m
}

func (m *WarehouseMetrics) IncOrderCreated(orderType string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(orderType)).Inc()
}

func (m *WarehouseMetrics) IncStatusTransition(from, to string) {
	if m == nil || m.statusTransitions == nil {
		return
	}
	m.statusTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *WarehouseMetrics) IncAdjustment(reason string) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *WarehouseMetrics) IncStockRejection(operation string) {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.WithLabelValues(normalizeLabel(operation)).Inc()
}

// SetItemsByStatus replaces the per-status gauge values.
func (m *WarehouseMetrics) SetItemsByStatus(counts map[string]int64) {
	if m == nil || m.itemsByStatus == nil {
		return
	}
	m.itemsByStatus.Reset()
	for status, count := range counts {
		m.itemsByStatus.WithLabelValues(normalizeLabel(status)).Set(float64(count))
	}
}

func (m *WarehouseMetrics) SetOutboxPending(count int64) {
	if m == nil || m.outboxPending == nil {
		return
	}
	m.outboxPending.Set(float64(count))
}
