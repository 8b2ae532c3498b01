package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
)

// PosSession is a cashier's drawer shift; POS orders roll their totals into it.
type PosSession struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	CashierID         uuid.UUID              `gorm:"column:cashier_id;type:uuid;not null;index"`
	OpeningCash       decimal.Decimal        `gorm:"column:opening_cash;type:numeric(15,2);not null"`
	ClosingCash       decimal.NullDecimal    `gorm:"column:closing_cash;type:numeric(15,2)"`
	TotalSales        decimal.Decimal        `gorm:"column:total_sales;type:numeric(15,2);not null;default:0"`
	TotalTransactions int                    `gorm:"column:total_transactions;not null;default:0"`
	Status            enums.PosSessionStatus `gorm:"column:status;type:text;not null"`
	OpenedAt          time.Time              `gorm:"column:opened_at;not null"`
	ClosedAt          *time.Time             `gorm:"column:closed_at"`
	Notes             *string                `gorm:"column:notes"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *PosSession) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
