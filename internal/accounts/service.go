package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/db"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/outbox"
)

const (
	affiliatePrefix       = "AFF"
	affiliateCodeAttempts = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the sponsor graph and affiliate enrollment.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	AssignSponsor(ctx context.Context, actor *outbox.ActorRef, accountID, sponsorID uuid.UUID) (*models.Account, error)
	EnableAffiliate(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	emitter outbox.Emitter
	newCode func() string
}

// NewService wires the account service.
func NewService(tx txRunner, repo Repository, emitter outbox.Emitter) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{tx: tx, repo: repo, emitter: emitter, newCode: generateAffiliateCode}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// AssignSponsor links accountID under sponsorID. Links that would make an
// account its own ancestor are rejected.
func (s *service) AssignSponsor(ctx context.Context, actor *outbox.ActorRef, accountID, sponsorID uuid.UUID) (*models.Account, error) {
	if accountID == sponsorID {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "account cannot sponsor itself")
	}

	var updated *models.Account
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByIDForUpdate(ctx, accountID); err != nil {
			return err
		}
		sponsor, err := repo.FindByID(ctx, sponsorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "sponsor not found")
		}
		cycle, err := containsInUpline(ctx, repo, sponsor, accountID)
		if err != nil {
			return err
		}
		if cycle {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sponsor assignment would create a cycle").
				WithDetails(map[string]any{"accountId": accountID, "sponsorId": sponsorID})
		}
		if err := repo.UpdateSponsor(ctx, accountID, sponsorID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sponsor")
		}
		if err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSponsorAssigned,
			AggregateType: enums.AggregateAccount,
			AggregateID:   accountID,
			Actor:         actor,
			Data:          outbox.SponsorAssignedEvent{AccountID: accountID, SponsorID: sponsorID},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit sponsor event")
		}
		updated, err = repo.FindByID(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EnableAffiliate marks the account as an affiliate and issues a referral
// code. Accounts that already have a code keep it.
func (s *service) EnableAffiliate(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsAffiliate && account.AffiliateCode != nil {
		return account, nil
	}

	for attempt := 0; attempt < affiliateCodeAttempts; attempt++ {
		code := s.newCode()
		err = s.repo.EnableAffiliate(ctx, accountID, code)
		if err == nil {
			return s.repo.FindByID(ctx, accountID)
		}
		if !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enable affiliate")
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate affiliate code")
}

func generateAffiliateCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return affiliatePrefix + strings.ToUpper(raw[:8])
}
