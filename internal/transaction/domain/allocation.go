package domain

import (
	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/pkg/money"
)

// AllocateDiscount spreads a sale-level discount over the eligible lines in
// proportion to their totals. Shares are floored to cents first, then the
// remaining cents go to eligible lines in order without exceeding any line total.
// The shares always sum to min(discount, Σ eligible totals).
func AllocateDiscount(discount decimal.Decimal, totals []decimal.Decimal, eligible []bool) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(totals))
	for i := range shares {
		shares[i] = decimal.Zero
	}

	base := decimal.Zero
	for i, total := range totals {
		if eligible[i] {
			base = base.Add(total)
		}
	}
	if !discount.IsPositive() || !base.IsPositive() {
		return shares
	}
	discount = money.Clamp(discount, base)

	allocated := decimal.Zero
	for i, total := range totals {
		if !eligible[i] {
			continue
		}
		shares[i] = discount.Mul(total).Div(base).Truncate(money.Scale)
		allocated = allocated.Add(shares[i])
	}

	remaining := discount.Sub(allocated)
	for remaining.IsPositive() {
		progressed := false
		for i, total := range totals {
			if !remaining.IsPositive() {
				break
			}
			if !eligible[i] || shares[i].Add(money.Cent).GreaterThan(total) {
				continue
			}
			shares[i] = shares[i].Add(money.Cent)
			remaining = remaining.Sub(money.Cent)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	return shares
}
