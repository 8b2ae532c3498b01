package accounts

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
)

// MaxChainDepth bounds every upward walk of the sponsor graph.
const MaxChainDepth = 10

// ChainLink is one sponsor in a buyer's upline; Level 1 is the direct sponsor.
type ChainLink struct {
	Sponsor models.Account
	Level   int
}

type accountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// Upline walks from the buyer's direct sponsor upward and stops at the first
// account without a sponsor or after MaxChainDepth hops, whichever comes first.
// Sponsors without a tier stay in the chain so deeper levels keep their position.
func Upline(ctx context.Context, finder accountFinder, buyer models.Account) ([]ChainLink, error) {
	var chain []ChainLink
	next := buyer.SponsorID
	for level := 1; next != nil && level <= MaxChainDepth; level++ {
		sponsor, err := finder.FindByID(ctx, *next)
		if err != nil {
			return nil, err
		}
		chain = append(chain, ChainLink{Sponsor: *sponsor, Level: level})
		next = sponsor.SponsorID
	}
	return chain, nil
}

// containsInUpline reports whether target is start itself or any ancestor of
// start. The walk is bounded by a visited set so corrupt data cannot loop.
func containsInUpline(ctx context.Context, finder accountFinder, start *models.Account, target uuid.UUID) (bool, error) {
	visited := map[uuid.UUID]struct{}{}
	current := start
	for current != nil {
		if current.ID == target {
			return true, nil
		}
		if _, seen := visited[current.ID]; seen {
			return true, nil
		}
		visited[current.ID] = struct{}{}
		if current.SponsorID == nil {
			return false, nil
		}
		parent, err := finder.FindByID(ctx, *current.SponsorID)
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}
