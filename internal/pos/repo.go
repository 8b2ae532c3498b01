package pos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
)

// Repository persists cashier sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.PosSession) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PosSession, error)
	FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*models.PosSession, error)
	Close(ctx context.Context, id uuid.UUID, closingCash decimal.Decimal, notes *string, closedAt time.Time) error
	AddSale(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session *models.PosSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PosSession, error) {
	var session models.PosSession
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindOpenByCashier returns nil, nil when the cashier has no open drawer.
func (r *repository) FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*models.PosSession, error) {
	var session models.PosSession
	err := r.db.WithContext(ctx).
		Where("cashier_id = ? AND status = ?", cashierID, enums.PosSessionStatusOpen).
		Order("opened_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) Close(ctx context.Context, id uuid.UUID, closingCash decimal.Decimal, notes *string, closedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PosSession{}).
		Where("id = ? AND status = ?", id, enums.PosSessionStatusOpen).
		Updates(map[string]any{
			"status":       enums.PosSessionStatusClosed,
			"closing_cash": closingCash,
			"notes":        notes,
			"closed_at":    closedAt,
		}).Error
}

// AddSale reports false when the session is missing or no longer open.
func (r *repository) AddSale(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PosSession{}).
		Where("id = ? AND status = ?", id, enums.PosSessionStatusOpen).
		UpdateColumns(map[string]any{
			"total_sales":        gorm.Expr("total_sales + ?", amount),
			"total_transactions": gorm.Expr("total_transactions + 1"),
		})
	return res.RowsAffected > 0, res.Error
}
