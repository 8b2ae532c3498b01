package commissions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/internal/accounts"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
	"github.com/angelmondragon/resellerhub-backend/pkg/metrics"
	"github.com/angelmondragon/resellerhub-backend/pkg/outbox"
	pkgpagination "github.com/angelmondragon/resellerhub-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service distributes order revenue up the sponsor chain and settles payouts.
type Service interface {
	// Calculate writes one pending commission per rewarded sponsor. Callers
	// must ensure it runs at most once per order, and pass the rows to
	// RecordCreated once their transaction commits.
	Calculate(ctx context.Context, tx *gorm.DB, order *models.Order) ([]models.Commission, error)
	RecordCreated(created []models.Commission)
	ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error)
	CancelPendingForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]models.Commission, error)
	ProcessPayments(ctx context.Context, actor *outbox.ActorRef, ids []uuid.UUID) (int, error)
	ResellerStats(ctx context.Context, resellerID uuid.UUID) (*Stats, error)
	ListByReseller(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	accounts accounts.Repository
	emitter  outbox.Emitter
	metrics  *metrics.SettlementMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(
	tx txRunner,
	repo Repository,
	accountRepo accounts.Repository,
	emitter outbox.Emitter,
	m *metrics.SettlementMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	if accountRepo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		accounts: accountRepo,
		emitter:  emitter,
		metrics:  m,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Calculate(ctx context.Context, tx *gorm.DB, order *models.Order) ([]models.Commission, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	accountRepo := s.accounts.WithTx(tx)
	repo := s.repo.WithTx(tx)

	buyer, err := accountRepo.FindByID(ctx, order.BuyerID)
	if err != nil {
		return nil, err
	}
	if buyer.SponsorID == nil {
		return nil, nil
	}

	chain, err := accounts.Upline(ctx, accountRepo, *buyer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "walk sponsor chain")
	}

	created := make([]models.Commission, 0, len(chain))
	for _, link := range chain {
		sponsor := link.Sponsor
		if sponsor.ResellerLevel == nil {
			continue
		}
		pct := LevelDecayPercentage(sponsor.ResellerLevel.Level, link.Level)
		if !pct.IsPositive() {
			continue
		}
		commission := models.Commission{
			OrderID:              order.ID,
			ResellerID:           sponsor.ID,
			BuyerID:              buyer.ID,
			Level:                link.Level,
			OrderAmount:          order.Subtotal,
			CommissionPercentage: pct,
			CommissionAmount:     Amount(order.Subtotal, pct),
			Status:               enums.CommissionStatusPending,
			Type:                 commissionType(sponsor),
		}
		if err := repo.Create(ctx, &commission); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create commission")
		}
		if err := accountRepo.IncrementCommissionEarned(ctx, sponsor.ID, commission.CommissionAmount); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment commission earned")
		}
		created = append(created, commission)
	}

	if len(created) == 0 {
		return created, nil
	}
	if err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCommissionsCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Data: outbox.CommissionsCreatedEvent{
			OrderID:     order.ID,
			BuyerID:     buyer.ID,
			Commissions: toLines(created),
		},
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit commissions event")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "commissions": len(created)})
		s.logg.Info(logCtx, "commissions calculated")
	}
	return created, nil
}

func (s *service) RecordCreated(created []models.Commission) {
	for _, c := range created {
		s.metrics.CommissionCreated(c.Type.String(), c.CommissionAmount)
	}
}

func (s *service) ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error) {
	return s.repo.WithTx(tx).ExistsForOrder(ctx, orderID)
}

// CancelPendingForOrder cancels the order's pending commissions and takes the
// cancelled amounts back out of each sponsor's earned total. Paid rows stay.
func (s *service) CancelPendingForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]models.Commission, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	repo := s.repo.WithTx(tx)
	accountRepo := s.accounts.WithTx(tx)

	pending, err := repo.ListPendingForOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending commissions")
	}
	if len(pending) == 0 {
		return nil, nil
	}

	if _, err := repo.MarkCancelled(ctx, idsOf(pending), s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel commissions")
	}
	for i := range pending {
		pending[i].Status = enums.CommissionStatusCancelled
		if err := accountRepo.IncrementCommissionEarned(ctx, pending[i].ResellerID, pending[i].CommissionAmount.Neg()); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reverse commission earned")
		}
	}
	return pending, nil
}

func (s *service) ProcessPayments(ctx context.Context, actor *outbox.ActorRef, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var processed int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pending, err := repo.ListPendingByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load commissions")
		}
		if len(pending) == 0 {
			return nil
		}

		paidAt := s.now()
		paidIDs := idsOf(pending)
		affected, err := repo.MarkPaid(ctx, paidIDs, paidAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark commissions paid")
		}
		processed = int(affected)

		batchID := uuid.New()
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCommissionsPaid,
			AggregateType: enums.AggregateCommission,
			AggregateID:   batchID,
			Actor:         actor,
			OccurredAt:    paidAt,
			Data: outbox.CommissionsPaidEvent{
				BatchID:       batchID,
				CommissionIDs: paidIDs,
				PaidAt:        paidAt,
			},
		})
	})
	if err != nil {
		return 0, err
	}
	s.metrics.CommissionsPaid(processed)
	return processed, nil
}

func (s *service) ResellerStats(ctx context.Context, resellerID uuid.UUID) (*Stats, error) {
	if resellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reseller id required")
	}
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats, err := s.repo.Stats(ctx, resellerID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load commission stats")
	}
	return stats, nil
}

func (s *service) ListByReseller(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ResellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reseller id required")
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid commission status")
	}

	query := listQuery{
		resellerID: params.ResellerID,
		status:     params.Status,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		query.cursor = cursor
	}

	rows, err := s.repo.ListByReseller(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
	}

	rows, nextCursor := pkgpagination.Page(rows, params.Limit, func(c models.Commission) pkgpagination.Cursor {
		return pkgpagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})

	items := make([]CommissionDTO, len(rows))
	for i, row := range rows {
		items[i] = toDTO(row)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func commissionType(sponsor models.Account) enums.CommissionType {
	if sponsor.IsAffiliate {
		return enums.CommissionTypeAffiliate
	}
	return enums.CommissionTypeReseller
}

func idsOf(rows []models.Commission) []uuid.UUID {
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

func toLines(rows []models.Commission) []outbox.CommissionLine {
	lines := make([]outbox.CommissionLine, len(rows))
	for i, row := range rows {
		lines[i] = outbox.CommissionLine{
			CommissionID: row.ID,
			ResellerID:   row.ResellerID,
			Level:        row.Level,
			Percentage:   row.CommissionPercentage,
			Amount:       row.CommissionAmount,
			Type:         row.Type.String(),
		}
	}
	return lines
}
