package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
)

// Repository persists accounts and their running totals.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByAffiliateCode(ctx context.Context, code string) (*models.Account, error)
	UpdateSponsor(ctx context.Context, id, sponsorID uuid.UUID) error
	EnableAffiliate(ctx context.Context, id uuid.UUID, code string) error
	IncrementTotalSales(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	IncrementCommissionEarned(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds account persistence to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("ResellerLevel").
		First(&account, "id = ?", id).Error
	if err != nil {
		return nil, accountNotFound(err)
	}
	return &account, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", id).Error
	if err != nil {
		return nil, accountNotFound(err)
	}
	return &account, nil
}

func (r *repository) FindByAffiliateCode(ctx context.Context, code string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "affiliate_code = ?", code).Error; err != nil {
		return nil, accountNotFound(err)
	}
	return &account, nil
}

func (r *repository) UpdateSponsor(ctx context.Context, id, sponsorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("sponsor_id", sponsorID).Error
}

func (r *repository) EnableAffiliate(ctx context.Context, id uuid.UUID, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_affiliate": true, "affiliate_code": code}).Error
}

// IncrementTotalSales adds amount to total_sales in a single UPDATE.
func (r *repository) IncrementTotalSales(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.increment(ctx, id, "total_sales", amount)
}

// IncrementCommissionEarned adds amount (negative to reverse) to total_commission_earned.
func (r *repository) IncrementCommissionEarned(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.increment(ctx, id, "total_commission_earned", amount)
}

func (r *repository) increment(ctx context.Context, id uuid.UUID, column string, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return nil
}

func accountNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
	}
	return err
}
