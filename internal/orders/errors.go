package orders

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
)

// EmptyCartError is raised when checkout finds nothing in the buyer's cart.
type EmptyCartError struct {
	AccountID uuid.UUID
}

func (e *EmptyCartError) Error() string {
	return fmt.Sprintf("cart is empty for account %s", e.AccountID)
}

// InsufficientStockError names the product that could not cover the request.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// ProductNotFoundError is raised when a POS line references an unknown product.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

func emptyCart(accountID uuid.UUID) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, &EmptyCartError{AccountID: accountID}, "cart is empty")
}

func insufficientStock(productID uuid.UUID, name string, requested, available int) error {
	cause := &InsufficientStockError{ProductID: productID, ProductName: name, Requested: requested, Available: available}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, cause.Error()).WithDetails(map[string]any{
		"productId":   productID,
		"productName": name,
		"requested":   requested,
		"available":   available,
	})
}

func productNotFound(productID uuid.UUID) error {
	cause := &ProductNotFoundError{ProductID: productID}
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, cause.Error()).
		WithDetails(map[string]any{"productId": productID})
}
