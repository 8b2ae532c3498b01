package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func TestSettlementMetricsCountsCommissions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSettlementMetrics(reg)
	m.OrderCreated("pos")
	m.CommissionCreated("reseller", decimal.NewFromInt(40000))
	m.CommissionCreated("reseller", decimal.NewFromInt(15000))
	m.CommissionsPaid(2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "commissions_created_total", "type", "reseller"); err != nil || got != 2 {
		t.Fatalf("expected 2 reseller commissions, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "commission_amount_total", "type", "reseller"); err != nil || got != 55000 {
		t.Fatalf("expected amount 55000, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "orders_created_total", "order_type", "pos"); err != nil || got != 1 {
		t.Fatalf("expected 1 pos order, got %f err=%v", got, err)
	}
}

func TestSettlementMetricsNilSafe(t *testing.T) {
	var m *SettlementMetrics
	m.OrderCreated("online")
	m.PaymentProcessed()
	m.OrderCancelled()
	m.CommissionCreated("affiliate", decimal.NewFromInt(1))
	m.CommissionsPaid(1)

	noop := NewSettlementMetrics(nil)
	noop.CommissionCreated("affiliate", decimal.NewFromInt(1))
}
