package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// SettlementMetrics counts order and commission outcomes.
type SettlementMetrics struct {
	ordersCreated      *prometheus.CounterVec
	paymentsProcessed  prometheus.Counter
	ordersCancelled    prometheus.Counter
	commissionsCreated *prometheus.CounterVec
	commissionAmount   *prometheus.CounterVec
	commissionsPaid    prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on reg. A nil registerer
// yields a no-op collector.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	m := &SettlementMetrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created, by order type.",
		}, []string{"order_type"}),
		paymentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_payments_processed_total",
			Help: "Order payments recorded.",
		}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Orders cancelled with stock restored.",
		}),
		commissionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commissions_created_total",
			Help: "Commission rows created, by commission type.",
		}, []string{"type"}),
		commissionAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commission_amount_total",
			Help: "Sum of commission amounts created, by commission type.",
		}, []string{"type"}),
		commissionsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commissions_paid_total",
			Help: "Commissions moved from pending to paid.",
		}),
	}
	reg.MustRegister(m.ordersCreated, m.paymentsProcessed, m.ordersCancelled, m.commissionsCreated, m.commissionAmount, m.commissionsPaid)
	return m
}

func (m *SettlementMetrics) OrderCreated(orderType string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(orderType)).Inc()
}

func (m *SettlementMetrics) PaymentProcessed() {
	if m == nil || m.paymentsProcessed == nil {
		return
	}
	m.paymentsProcessed.Inc()
}

func (m *SettlementMetrics) OrderCancelled() {
	if m == nil || m.ordersCancelled == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// CommissionCreated records one commission row and its amount.
func (m *SettlementMetrics) CommissionCreated(commissionType string, amount decimal.Decimal) {
	if m == nil || m.commissionsCreated == nil {
		return
	}
	label := normalizeLabel(commissionType)
	m.commissionsCreated.WithLabelValues(label).Inc()
	m.commissionAmount.WithLabelValues(label).Add(amount.InexactFloat64())
}

func (m *SettlementMetrics) CommissionsPaid(count int) {
	if m == nil || m.commissionsPaid == nil || count <= 0 {
		return
	}
	m.commissionsPaid.Add(float64(count))
}
