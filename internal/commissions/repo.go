package commissions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/resellerhub-backend/pkg/pagination"
)

// Repository persists commission rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, commission *models.Commission) error
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	ListPendingForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Commission, error)
	ListPendingByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Commission, error)
	MarkPaid(ctx context.Context, ids []uuid.UUID, paidAt time.Time) (int64, error)
	MarkCancelled(ctx context.Context, ids []uuid.UUID, cancelledAt time.Time) (int64, error)
	ListByReseller(ctx context.Context, query listQuery) ([]models.Commission, error)
	Stats(ctx context.Context, resellerID uuid.UUID, monthStart, monthEnd time.Time) (*Stats, error)
}

type listQuery struct {
	resellerID uuid.UUID
	status     enums.CommissionStatus
	limit      int
	cursor     *pkgpagination.Cursor
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

func (r *repository) Create(ctx context.Context, commission *models.Commission) error {
	return r.db.WithContext(ctx).Create(commission).Error
}

func (r *repository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Commission{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListPendingForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Commission, error) {
	var rows []models.Commission
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND status = ?", orderID, enums.CommissionStatusPending).
		Order("level ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListPendingByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Commission, error) {
	var rows []models.Commission
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND status = ?", ids, enums.CommissionStatusPending).
		Find(&rows).Error
	return rows, err
}

func (r *repository) MarkPaid(ctx context.Context, ids []uuid.UUID, paidAt time.Time) (int64, error) {
	return r.transition(ctx, ids, map[string]any{
		"status":  enums.CommissionStatusPaid,
		"paid_at": paidAt,
	})
}

func (r *repository) MarkCancelled(ctx context.Context, ids []uuid.UUID, cancelledAt time.Time) (int64, error) {
	return r.transition(ctx, ids, map[string]any{
		"status":       enums.CommissionStatusCancelled,
		"cancelled_at": cancelledAt,
	})
}

// transition only moves rows that are still pending.
func (r *repository) transition(ctx context.Context, ids []uuid.UUID, updates map[string]any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Commission{}).
		Where("id IN ? AND status = ?", ids, enums.CommissionStatusPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) ListByReseller(ctx context.Context, q listQuery) ([]models.Commission, error) {
	query := r.db.WithContext(ctx).Model(&models.Commission{}).Where("reseller_id = ?", q.resellerID)
	if q.status != "" {
		query = query.Where("status = ?", q.status)
	}
	if q.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", q.cursor.CreatedAt, q.cursor.CreatedAt, q.cursor.ID)
	}

	var rows []models.Commission
	err := query.Order("created_at DESC").Order("id DESC").Limit(q.limit).Find(&rows).Error
	return rows, err
}

type statsRow struct {
	PaidTotal      decimal.Decimal
	PendingTotal   decimal.Decimal
	ThisMonthTotal decimal.Decimal
	TotalCount     int64
}

func (r *repository) Stats(ctx context.Context, resellerID uuid.UUID, monthStart, monthEnd time.Time) (*Stats, error) {
	var row statsRow
	err := r.db.WithContext(ctx).
		Model(&models.Commission{}).
		Select(`COALESCE(SUM(CASE WHEN status = ? THEN commission_amount ELSE 0 END), 0) AS paid_total,
			COALESCE(SUM(CASE WHEN status = ? THEN commission_amount ELSE 0 END), 0) AS pending_total,
			COALESCE(SUM(CASE WHEN status = ? AND paid_at >= ? AND paid_at < ? THEN commission_amount ELSE 0 END), 0) AS this_month_total,
			COUNT(*) AS total_count`,
			enums.CommissionStatusPaid,
			enums.CommissionStatusPending,
			enums.CommissionStatusPaid, monthStart, monthEnd,
		).
		Where("reseller_id = ?", resellerID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalPaid:     row.PaidTotal.Round(2),
		TotalPending:  row.PendingTotal.Round(2),
		ThisMonthPaid: row.ThisMonthTotal.Round(2),
		TotalCount:    row.TotalCount,
	}, nil
}
