package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResellerLevel is tier reference data (1-10) carrying the purchase discount
// and base commission percentage.
type ResellerLevel struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Level                int             `gorm:"column:level;not null;uniqueIndex"`
	Name                 string          `gorm:"column:name;not null"`
	DiscountPercentage   decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null"`
	CommissionPercentage decimal.Decimal `gorm:"column:commission_percentage;type:numeric(5,2);not null"`
	MinSales             decimal.Decimal `gorm:"column:min_sales;type:numeric(15,2);not null"`
	IsActive             bool            `gorm:"column:is_active;not null"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *ResellerLevel) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
