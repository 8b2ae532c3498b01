package levels

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
)

// Service exposes the tier catalog to API callers.
type Service interface {
	List(ctx context.Context) ([]LevelDTO, error)
}

// LevelDTO is the public shape of a tier.
type LevelDTO struct {
	Level                int             `json:"level"`
	Name                 string          `json:"name"`
	DiscountPercentage   decimal.Decimal `json:"discount_percentage"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	MinSales             decimal.Decimal `json:"min_sales"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("levels repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]LevelDTO, error) {
	rows, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]LevelDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func toDTO(level models.ResellerLevel) LevelDTO {
	return LevelDTO{
		Level:                level.Level,
		Name:                 level.Name,
		DiscountPercentage:   level.DiscountPercentage,
		CommissionPercentage: level.CommissionPercentage,
		MinSales:             level.MinSales,
	}
}
