package levels

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// PriceForTier applies the tier's purchase discount to basePrice. A nil tier
// leaves the price unchanged; the result never drops below zero.
func PriceForTier(basePrice decimal.Decimal, level *models.ResellerLevel) decimal.Decimal {
	if level == nil {
		return basePrice
	}
	discount := basePrice.Mul(level.DiscountPercentage).Div(hundred)
	price := basePrice.Sub(discount)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price.Round(2)
}
