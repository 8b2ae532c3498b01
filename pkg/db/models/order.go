package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	"github.com/angelmondragon/resellerhub-backend/pkg/types"
)

// Order is a settled or settling sale. TotalAmount is always
// Subtotal + ShippingCost + TaxAmount - DiscountAmount.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	BuyerID         uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	ResellerID      *uuid.UUID          `gorm:"column:reseller_id;type:uuid"`
	PosSessionID    *uuid.UUID          `gorm:"column:pos_session_id;type:uuid"`
	OrderType       enums.OrderType     `gorm:"column:order_type;type:text;not null"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(15,2);not null"`
	ShippingCost    decimal.Decimal     `gorm:"column:shipping_cost;type:numeric(15,2);not null"`
	TaxAmount       decimal.Decimal     `gorm:"column:tax_amount;type:numeric(15,2);not null"`
	DiscountAmount  decimal.Decimal     `gorm:"column:discount_amount;type:numeric(15,2);not null"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(15,2);not null"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;index"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentRef      *string             `gorm:"column:payment_reference"`
	PaymentData     map[string]any      `gorm:"column:payment_data;type:jsonb;serializer:json"`
	ShippingAddress *types.Address      `gorm:"column:shipping_address;type:jsonb"`
	BillingAddress  *types.Address      `gorm:"column:billing_address;type:jsonb"`
	ShippingService *string             `gorm:"column:shipping_service"`
	ShippingType    *string             `gorm:"column:shipping_service_type"`
	Notes           *string             `gorm:"column:notes"`
	TrackingNumber  *string             `gorm:"column:tracking_number"`
	ShippedAt       *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	PaidAt          *time.Time          `gorm:"column:paid_at"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// IsCommissionEligible reports whether the order has reached a state in which
// commissions are owed.
func (o Order) IsCommissionEligible() bool {
	return o.Status == enums.OrderStatusConfirmed || o.PaymentStatus == enums.PaymentStatusPaid
}

// OrderItem snapshots a product at sale time, including the options the
// buyer picked in the cart. Immutable once written.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string          `gorm:"column:product_name;not null"`
	ProductSKU     string          `gorm:"column:product_sku;not null"`
	ProductOptions map[string]any  `gorm:"column:product_options;type:jsonb;serializer:json"`
	Quantity       int             `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(15,2);not null"`
	TotalPrice     decimal.Decimal `gorm:"column:total_price;type:numeric(15,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
