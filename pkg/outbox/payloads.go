package outbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is published for every new online or POS order.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID       `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	BuyerID       uuid.UUID       `json:"buyerId"`
	OrderType     string          `json:"orderType"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

// OrderStatusChangedEvent records a lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID `json:"orderId"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	TrackingNumber *string   `json:"trackingNumber,omitempty"`
	ChangedAt      time.Time `json:"changedAt"`
}

// OrderPaidEvent records a captured payment.
type OrderPaidEvent struct {
	OrderID       uuid.UUID       `json:"orderId"`
	PaymentMethod string          `json:"paymentMethod"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAt        time.Time       `json:"paidAt"`
}

// OrderCancelledEvent summarises the compensation applied on cancellation.
type OrderCancelledEvent struct {
	OrderID              uuid.UUID   `json:"orderId"`
	RestoredItems        int         `json:"restoredItems"`
	CancelledCommissions []uuid.UUID `json:"cancelledCommissions"`
	CancelledAt          time.Time   `json:"cancelledAt"`
}

// CommissionLine is one payout inside a commission event.
type CommissionLine struct {
	CommissionID uuid.UUID       `json:"commissionId"`
	ResellerID   uuid.UUID       `json:"resellerId"`
	Level        int             `json:"level"`
	Percentage   decimal.Decimal `json:"percentage"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
}

// CommissionsCreatedEvent lists the payouts produced for one order.
type CommissionsCreatedEvent struct {
	OrderID     uuid.UUID        `json:"orderId"`
	BuyerID     uuid.UUID        `json:"buyerId"`
	Commissions []CommissionLine `json:"commissions"`
}

// CommissionsPaidEvent lists commissions settled in one payout batch.
type CommissionsPaidEvent struct {
	BatchID       uuid.UUID   `json:"batchId"`
	CommissionIDs []uuid.UUID `json:"commissionIds"`
	PaidAt        time.Time   `json:"paidAt"`
}

// SponsorAssignedEvent records a change to the sponsor graph.
type SponsorAssignedEvent struct {
	AccountID uuid.UUID `json:"accountId"`
	SponsorID uuid.UUID `json:"sponsorId"`
}

// PosSessionClosedEvent reports a cashier's closing reconciliation.
type PosSessionClosedEvent struct {
	SessionID         uuid.UUID       `json:"sessionId"`
	CashierID         uuid.UUID       `json:"cashierId"`
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalTransactions int             `json:"totalTransactions"`
	ClosingCash       decimal.Decimal `json:"closingCash"`
}
