package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
)

// AddItemInput is the payload for adding a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Options   map[string]any
}

// View is the cart as returned to the buyer.
type View struct {
	Items    []ItemDTO       `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Options     map[string]any  `json:"options,omitempty"`
}

func toView(items []models.CartItem) *View {
	view := &View{Items: make([]ItemDTO, 0, len(items)), Subtotal: decimal.Zero}
	for _, item := range items {
		dto := ItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
			Options:   item.Options,
		}
		if item.Product != nil {
			dto.ProductName = item.Product.Name
			dto.SKU = item.Product.SKU
		}
		view.Items = append(view.Items, dto)
		view.Subtotal = view.Subtotal.Add(dto.LineTotal)
	}
	return view
}
