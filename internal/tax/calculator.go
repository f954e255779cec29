// Package tax derives line-item tax from a category rate.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/pkg/money"
)

// ItemTax returns totalPrice × rate / 100 rounded half-up to cents.
// A null rate yields zero tax.
func ItemTax(totalPrice decimal.Decimal, rate decimal.NullDecimal) decimal.Decimal {
	if !rate.Valid {
		return decimal.Zero
	}
	return money.Percent(totalPrice, rate.Decimal)
}

// Rate resolves the tax rate of a possibly missing category.
func Rate(category *domain.Category) decimal.NullDecimal {
	if category == nil {
		return decimal.NullDecimal{}
	}
	return category.TaxRate
}
