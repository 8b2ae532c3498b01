package commissions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/resellerhub-backend/pkg/pagination"
)

// Stats summarises a reseller's earnings.
type Stats struct {
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalPending  decimal.Decimal `json:"total_pending"`
	ThisMonthPaid decimal.Decimal `json:"this_month_paid"`
	TotalCount    int64           `json:"total_count"`
}

type ListParams struct {
	ResellerID uuid.UUID
	Status     enums.CommissionStatus
	pkgpagination.Params
}

type ListResult struct {
	Items  []CommissionDTO `json:"items"`
	Cursor string          `json:"cursor"`
}

type CommissionDTO struct {
	ID                   uuid.UUID              `json:"id"`
	OrderID              uuid.UUID              `json:"order_id"`
	BuyerID              uuid.UUID              `json:"buyer_id"`
	Level                int                    `json:"level"`
	OrderAmount          decimal.Decimal        `json:"order_amount"`
	CommissionPercentage decimal.Decimal        `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal        `json:"commission_amount"`
	Status               enums.CommissionStatus `json:"status"`
	Type                 enums.CommissionType   `json:"type"`
	PaidAt               *time.Time             `json:"paid_at,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
}

func toDTO(m models.Commission) CommissionDTO {
	return CommissionDTO{
		ID:                   m.ID,
		OrderID:              m.OrderID,
		BuyerID:              m.BuyerID,
		Level:                m.Level,
		OrderAmount:          m.OrderAmount,
		CommissionPercentage: m.CommissionPercentage,
		CommissionAmount:     m.CommissionAmount,
		Status:               m.Status,
		Type:                 m.Type,
		PaidAt:               m.PaidAt,
		CreatedAt:            m.CreatedAt,
	}
}
