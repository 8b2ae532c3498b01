package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/dbtest"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
)

func TestEmitWritesEnvelopeInsideTransaction(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	orderID := uuid.New()

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &ActorRef{AccountID: uuid.New(), Role: "admin"},
			Data: OrderPaidEvent{
				OrderID:       orderID,
				PaymentMethod: "cash",
				TotalAmount:   decimal.NewFromInt(250000),
				PaidAt:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
		})
	})
	require.NoError(t, err)

	rows, err := repo.ListByAggregate(orderID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, enums.EventOrderPaid, rows[0].EventType)

	envelope, err := DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	require.Equal(t, currentVersion, envelope.Version)
	require.NotEmpty(t, envelope.EventID)

	var data OrderPaidEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.True(t, data.TotalAmount.Equal(decimal.NewFromInt(250000)))
}

func TestEmitRolledBackWithTransaction(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	orderID := uuid.New()

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data:          OrderCreatedEvent{OrderID: orderID},
		}); err != nil {
			return err
		}
		return errors.New("stock check failed")
	})
	require.Error(t, err)

	rows, err := repo.ListByAggregate(orderID)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestEmitRejectsUnknownEventType(t *testing.T) {
	_, conn := dbtest.OpenClient(t)
	svc := NewService(NewRepository(conn), nil)
	err := svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     "mystery",
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	})
	require.Error(t, err)
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(nil, nil)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))
}

func TestFetchMarkAndPrune(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
			return svc.Emit(ctx, tx, DomainEvent{
				EventType:     enums.EventCommissionsPaid,
				AggregateType: enums.AggregateCommission,
				AggregateID:   uuid.New(),
				Data:          CommissionsPaidEvent{},
			})
		}))
	}

	var published uuid.UUID
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := repo.FetchUnpublishedForPublish(tx, 2, 5)
		if err != nil {
			return err
		}
		require.Len(t, rows, 2)
		published = rows[0].ID
		if err := repo.MarkPublishedTx(tx, rows[0].ID); err != nil {
			return err
		}
		return repo.MarkFailedTx(tx, rows[1].ID, errors.New("topic missing"))
	}))

	var failedAttempts int
	require.NoError(t, conn.Raw("SELECT MAX(attempt_count) FROM outbox_events").Scan(&failedAttempts).Error)
	require.Equal(t, 1, failedAttempts)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := repo.DeletePublishedBefore(tx, time.Now().UTC().Add(time.Hour))
		require.Equal(t, int64(1), deleted)
		return err
	}))

	var remaining int64
	require.NoError(t, conn.Table("outbox_events").Where("id = ?", published).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestMarkTerminalExcludesRowFromFetch(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Data:          OrderPaidEvent{},
		})
	}))

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := repo.FetchUnpublishedForPublish(tx, 10, 5)
		require.Len(t, rows, 1)
		if err != nil {
			return err
		}
		return repo.MarkTerminalTx(tx, rows[0].ID, errors.New("bad envelope"), 5)
	}))

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := repo.FetchUnpublishedForPublish(tx, 10, 5)
		require.Empty(t, rows)
		return err
	}))
}
