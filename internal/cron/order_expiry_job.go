package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/resellerhub-backend/internal/orders"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
	"github.com/angelmondragon/resellerhub-backend/pkg/outbox"
)

const defaultExpiryBatch = 100

type staleOrderCanceller interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input orders.StatusUpdate) (*models.Order, error)
}

// OrderExpiryJobParams configure cancellation of unpaid online orders.
type OrderExpiryJobParams struct {
	Logger    *logger.Logger
	Orders    staleOrderCanceller
	Expiry    time.Duration
	BatchSize int
}

// NewOrderExpiryJob cancels online orders left pending past Expiry. Cancelling
// goes through the order service so stock and pending commissions are restored.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Expiry <= 0 {
		return nil, fmt.Errorf("expiry must be positive")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &orderExpiryJob{
		logg:   params.Logger,
		orders: params.Orders,
		expiry: params.Expiry,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg   *logger.Logger
	orders staleOrderCanceller
	expiry time.Duration
	batch  int
	now    func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.expiry)
	stale, err := j.orders.ListStalePending(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("list stale orders: %w", err)
	}

	var (
		errs      error
		cancelled int
	)
	for _, order := range stale {
		_, err := j.orders.UpdateStatus(ctx, systemActor, order.ID, orders.StatusUpdate{Status: enums.OrderStatusCancelled})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.OrderNumber, err))
			continue
		}
		cancelled++
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"found":     len(stale),
		"cancelled": cancelled,
	}), "order expiry sweep complete")
	return errs
}

var systemActor = &outbox.ActorRef{Role: "system"}
