package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	"github.com/angelmondragon/resellerhub-backend/pkg/types"
)

// CheckoutInput carries the caller-supplied charges for an online order.
// Status and PaymentStatus default to pending; data imported already
// confirmed or paid may set them.
type CheckoutInput struct {
	ShippingCost    decimal.Decimal
	TaxAmount       decimal.Decimal
	DiscountAmount  decimal.Decimal
	PaymentMethod   enums.PaymentMethod
	ShippingAddress *types.Address
	BillingAddress  *types.Address
	ShippingService *string
	ShippingType    *string
	Notes           *string
	Status          enums.OrderStatus
	PaymentStatus   enums.PaymentStatus
}

// PosItemInput is one counter sale line; the cashier sets the unit price.
type PosItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// PosOrderInput describes an in-store sale.
type PosOrderInput struct {
	CustomerID       uuid.UUID
	SessionID        *uuid.UUID
	Items            []PosItemInput
	PaymentMethod    enums.PaymentMethod
	PaymentReference *string
	TaxAmount        decimal.Decimal
	DiscountAmount   decimal.Decimal
	Notes            *string
}

// StatusUpdate requests a lifecycle transition.
type StatusUpdate struct {
	Status         enums.OrderStatus
	TrackingNumber *string
}

// PaymentInput records a captured payment.
type PaymentInput struct {
	Method    enums.PaymentMethod
	Reference *string
	Data      map[string]any
}

type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	BuyerID         uuid.UUID           `json:"buyer_id"`
	ResellerID      *uuid.UUID          `json:"reseller_id,omitempty"`
	PosSessionID    *uuid.UUID          `json:"pos_session_id,omitempty"`
	OrderType       enums.OrderType     `json:"order_type"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	ShippingAddress *types.Address      `json:"shipping_address,omitempty"`
	ShippingService *string             `json:"shipping_service,omitempty"`
	ShippingType    *string             `json:"shipping_service_type,omitempty"`
	TrackingNumber  *string             `json:"tracking_number,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	Items           []OrderItemDTO      `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

type OrderItemDTO struct {
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductSKU     string          `json:"product_sku"`
	ProductOptions map[string]any  `json:"product_options,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

// ToDTO maps an order with its items for API responses.
func ToDTO(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		ResellerID:      o.ResellerID,
		PosSessionID:    o.PosSessionID,
		OrderType:       o.OrderType,
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		TaxAmount:       o.TaxAmount,
		DiscountAmount:  o.DiscountAmount,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		ShippingService: o.ShippingService,
		ShippingType:    o.ShippingType,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		Items:           make([]OrderItemDTO, len(o.Items)),
		CreatedAt:       o.CreatedAt,
	}
	for i, item := range o.Items {
		dto.Items[i] = OrderItemDTO{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ProductSKU:     item.ProductSKU,
			ProductOptions: item.ProductOptions,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
		}
	}
	return dto
}
