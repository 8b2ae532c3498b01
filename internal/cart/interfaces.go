package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service
// and by checkout.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.CartItem, error)
	Find(ctx context.Context, accountID, productID uuid.UUID) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, accountID, productID uuid.UUID) (int64, error)
	Clear(ctx context.Context, accountID uuid.UUID) error
}
