package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
)

// Commission is one sponsor's payout for one order at one chain level.
// CommissionAmount = OrderAmount × CommissionPercentage / 100 and is never
// redefined after creation.
type Commission struct {
	ID                   uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID              uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_commissions_order_reseller_level"`
	ResellerID           uuid.UUID              `gorm:"column:reseller_id;type:uuid;not null;uniqueIndex:ux_commissions_order_reseller_level;index:idx_commissions_reseller_status"`
	BuyerID              uuid.UUID              `gorm:"column:buyer_id;type:uuid;not null"`
	Level                int                    `gorm:"column:level;not null;uniqueIndex:ux_commissions_order_reseller_level"`
	OrderAmount          decimal.Decimal        `gorm:"column:order_amount;type:numeric(15,2);not null"`
	CommissionPercentage decimal.Decimal        `gorm:"column:commission_percentage;type:numeric(5,2);not null"`
	CommissionAmount     decimal.Decimal        `gorm:"column:commission_amount;type:numeric(15,2);not null"`
	Status               enums.CommissionStatus `gorm:"column:status;type:text;not null;index:idx_commissions_reseller_status"`
	Type                 enums.CommissionType   `gorm:"column:type;type:text;not null"`
	PaidAt               *time.Time             `gorm:"column:paid_at"`
	CancelledAt          *time.Time             `gorm:"column:cancelled_at"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Commission) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
