package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/internal/accounts"
	"github.com/angelmondragon/resellerhub-backend/internal/levels"
	"github.com/angelmondragon/resellerhub-backend/internal/products"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart operations for buyers.
type Service interface {
	AddItem(ctx context.Context, accountID uuid.UUID, input AddItemInput) (*View, error)
	UpdateQuantity(ctx context.Context, accountID, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, accountID, productID uuid.UUID) (*View, error)
	List(ctx context.Context, accountID uuid.UUID) (*View, error)
	Clear(ctx context.Context, accountID uuid.UUID) error
}

type service struct {
	repo     CartRepository
	tx       txRunner
	accounts accounts.Repository
	products *products.Repository
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, accountRepo accounts.Repository, productRepo *products.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if accountRepo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, tx: tx, accounts: accountRepo, products: productRepo}, nil
}

// AddItem locks the tier price on first add. Adding a product already in the
// cart only raises its quantity; the locked price stays.
func (s *service) AddItem(ctx context.Context, accountID uuid.UUID, input AddItemInput) (*View, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := s.products.WithTx(tx).FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
				WithDetails(map[string]any{"productId": product.ID})
		}

		existing, err := repo.Find(ctx, accountID, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}
		quantity := input.Quantity
		if existing != nil {
			quantity += existing.Quantity
		}
		if err := ensureStock(product, quantity); err != nil {
			return err
		}

		if existing != nil {
			return repo.UpdateQuantity(ctx, existing.ID, quantity)
		}

		account, err := s.accounts.WithTx(tx).FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		return repo.Create(ctx, &models.CartItem{
			AccountID: accountID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: levels.PriceForTier(product.Price, account.ResellerLevel),
			Options:   input.Options,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, accountID)
}

// UpdateQuantity sets an absolute quantity; zero or less removes the line.
func (s *service) UpdateQuantity(ctx context.Context, accountID, productID uuid.UUID, quantity int) (*View, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, accountID, productID)
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Find(ctx, accountID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		product, err := s.products.WithTx(tx).FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := ensureStock(product, quantity); err != nil {
			return err
		}
		return repo.UpdateQuantity(ctx, existing.ID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, accountID)
}

func (s *service) RemoveItem(ctx context.Context, accountID, productID uuid.UUID) (*View, error) {
	removed, err := s.repo.Delete(ctx, accountID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	if removed == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	return s.List(ctx, accountID)
}

func (s *service) List(ctx context.Context, accountID uuid.UUID) (*View, error) {
	items, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart")
	}
	return toView(items), nil
}

func (s *service) Clear(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repo.Clear(ctx, accountID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func ensureStock(product *models.Product, quantity int) error {
	if product.StockQuantity >= quantity {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(map[string]any{
		"productId": product.ID,
		"requested": quantity,
		"available": product.StockQuantity,
	})
}
