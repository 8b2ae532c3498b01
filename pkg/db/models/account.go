package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
)

// Account is the unified buyer/reseller/affiliate record. SponsorID points at
// the upline account; the relation must stay acyclic.
type Account struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name                  string            `gorm:"column:name;not null"`
	Email                 string            `gorm:"column:email;not null;uniqueIndex"`
	Role                  enums.AccountRole `gorm:"column:role;type:text;not null"`
	ResellerLevelID       *uuid.UUID        `gorm:"column:reseller_level_id;type:uuid"`
	ResellerLevel         *ResellerLevel    `gorm:"foreignKey:ResellerLevelID"`
	SponsorID             *uuid.UUID        `gorm:"column:sponsor_id;type:uuid;index"`
	IsAffiliate           bool              `gorm:"column:is_affiliate;not null"`
	AffiliateCode         *string           `gorm:"column:affiliate_code;uniqueIndex"`
	TotalSales            decimal.Decimal   `gorm:"column:total_sales;type:numeric(15,2);not null;default:0"`
	TotalCommissionEarned decimal.Decimal   `gorm:"column:total_commission_earned;type:numeric(15,2);not null;default:0"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
