package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages cashier drawer sessions.
type Service interface {
	Open(ctx context.Context, cashierID uuid.UUID, openingCash decimal.Decimal) (*models.PosSession, error)
	Close(ctx context.Context, cashierID, sessionID uuid.UUID, input CloseInput) (*models.PosSession, error)
	Current(ctx context.Context, cashierID uuid.UUID) (*models.PosSession, error)
	// RecordSale rolls a POS order into the session; it runs inside the
	// settlement transaction that created the order.
	RecordSale(ctx context.Context, tx *gorm.DB, sessionID, cashierID uuid.UUID, amount decimal.Decimal) error
}

// CloseInput carries the drawer count at close.
type CloseInput struct {
	ClosingCash decimal.Decimal
	Notes       *string
}

type service struct {
	tx      txRunner
	repo    Repository
	emitter outbox.Emitter
	now     func() time.Time
}

func NewService(tx txRunner, repo Repository, emitter outbox.Emitter) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("pos session repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{tx: tx, repo: repo, emitter: emitter, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Open(ctx context.Context, cashierID uuid.UUID, openingCash decimal.Decimal) (*models.PosSession, error) {
	if openingCash.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening cash cannot be negative")
	}
	var session *models.PosSession
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindOpenByCashier(ctx, cashierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load open session")
		}
		if current != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "cashier already has an open session").
				WithDetails(map[string]any{"sessionId": current.ID})
		}
		session = &models.PosSession{
			CashierID:   cashierID,
			OpeningCash: openingCash.Round(2),
			TotalSales:  decimal.Zero,
			Status:      enums.PosSessionStatusOpen,
			OpenedAt:    s.now(),
		}
		return repo.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) Close(ctx context.Context, cashierID, sessionID uuid.UUID, input CloseInput) (*models.PosSession, error) {
	if input.ClosingCash.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closing cash cannot be negative")
	}
	var closed *models.PosSession
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		session, err := s.ownedSession(ctx, repo, sessionID, cashierID)
		if err != nil {
			return err
		}
		if session.Status != enums.PosSessionStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "session already closed")
		}

		closedAt := s.now()
		closingCash := input.ClosingCash.Round(2)
		if err := repo.Close(ctx, session.ID, closingCash, input.Notes, closedAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close session")
		}
		session.Status = enums.PosSessionStatusClosed
		session.ClosingCash = decimal.NewNullDecimal(closingCash)
		session.ClosedAt = &closedAt
		session.Notes = input.Notes

		if err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPosSessionClosed,
			AggregateType: enums.AggregatePosSession,
			AggregateID:   session.ID,
			Actor:         &outbox.ActorRef{AccountID: cashierID, Role: enums.AccountRoleCashier.String()},
			OccurredAt:    closedAt,
			Data: outbox.PosSessionClosedEvent{
				SessionID:         session.ID,
				CashierID:         cashierID,
				TotalSales:        session.TotalSales,
				TotalTransactions: session.TotalTransactions,
				ClosingCash:       closingCash,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit session closed")
		}
		closed = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (s *service) Current(ctx context.Context, cashierID uuid.UUID) (*models.PosSession, error) {
	session, err := s.repo.FindOpenByCashier(ctx, cashierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load open session")
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open session")
	}
	return session, nil
}

func (s *service) RecordSale(ctx context.Context, tx *gorm.DB, sessionID, cashierID uuid.UUID, amount decimal.Decimal) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	repo := s.repo.WithTx(tx)
	if _, err := s.ownedSession(ctx, repo, sessionID, cashierID); err != nil {
		return err
	}
	ok, err := repo.AddSale(ctx, sessionID, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record session sale")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "session is not open")
	}
	return nil
}

func (s *service) ownedSession(ctx context.Context, repo Repository, sessionID, cashierID uuid.UUID) (*models.PosSession, error) {
	session, err := repo.FindByIDForUpdate(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "session not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}
	if session.CashierID != cashierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "session belongs to another cashier")
	}
	return session, nil
}
