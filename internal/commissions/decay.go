package commissions

import "github.com/shopspring/decimal"

var (
	fallbackBase = decimal.NewFromInt(1)
	decayStep    = decimal.RequireFromString("0.5")
	floorPct     = decimal.RequireFromString("0.1")
	hundred      = decimal.NewFromInt(100)
)

// baseByTier is keyed by tier number, not by the catalog column, so payouts
// stay stable when tier rows are edited.
var baseByTier = map[int]decimal.Decimal{
	1:  decimal.NewFromInt(2),
	2:  decimal.NewFromInt(3),
	3:  decimal.NewFromInt(4),
	4:  decimal.NewFromInt(5),
	5:  decimal.NewFromInt(6),
	6:  decimal.NewFromInt(7),
	7:  decimal.NewFromInt(8),
	8:  decimal.NewFromInt(9),
	9:  decimal.NewFromInt(10),
	10: decimal.NewFromInt(12),
}

// LevelDecayPercentage returns the percentage a sponsor of the given tier earns
// at chain level (1 = direct sponsor). It never drops below 0.1.
func LevelDecayPercentage(tier, level int) decimal.Decimal {
	base, ok := baseByTier[tier]
	if !ok {
		base = fallbackBase
	}
	pct := base.Sub(decayStep.Mul(decimal.NewFromInt(int64(level - 1))))
	if pct.LessThan(floorPct) {
		pct = floorPct
	}
	return pct.Round(2)
}

// Amount applies pct to subtotal, rounded to cents.
func Amount(subtotal, pct decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(pct).Div(hundred).Round(2)
}
