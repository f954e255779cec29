// Package money holds the currency helpers shared by tax, promotions and settlement.
package money

import "github.com/shopspring/decimal"

// Scale is the number of decimal places kept for currency amounts.
const Scale = 2

var (
	hundred = decimal.NewFromInt(100)
	// Cent is the smallest currency unit.
	Cent = decimal.New(1, -Scale)
)

// Round rounds half-up (away from zero) to currency precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent returns amount × rate / 100, rounded to currency precision.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(rate).Div(hundred))
}

// Clamp bounds d to [0, upper].
func Clamp(d, upper decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(upper) {
		return upper
	}
	return d
}
