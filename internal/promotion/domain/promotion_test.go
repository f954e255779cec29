package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tenPercentOverFive() *Promotion {
	return &Promotion{
		ID:                1,
		Name:              "Ten off",
		Type:              TypePercentage,
		DiscountValue:     d("10"),
		StartDate:         now.Add(-time.Hour),
		EndDate:           now.Add(time.Hour),
		MinPurchaseAmount: decimal.NewNullDecimal(d("5.00")),
		Active:            true,
	}
}

func TestCalculateDiscount(t *testing.T) {
	t.Run("percentage rounds to cents", func(t *testing.T) {
		p := tenPercentOverFive()
		assert.Equal(t, "0.65", p.CalculateDiscount(d("6.48"), now).StringFixed(2))
	})

	t.Run("below minimum purchase", func(t *testing.T) {
		p := tenPercentOverFive()
		assert.True(t, p.CalculateDiscount(d("4.00"), now).IsZero())
	})

	t.Run("inactive", func(t *testing.T) {
		p := tenPercentOverFive()
		p.Active = false
		assert.True(t, p.CalculateDiscount(d("6.48"), now).IsZero())
	})

	t.Run("window bounds are exclusive", func(t *testing.T) {
		p := tenPercentOverFive()
		assert.True(t, p.CalculateDiscount(d("6.48"), p.StartDate).IsZero())
		assert.True(t, p.CalculateDiscount(d("6.48"), p.EndDate).IsZero())
	})

	t.Run("fixed amount is clamped to the purchase", func(t *testing.T) {
		p := &Promotion{
			Type:          TypeFixedAmount,
			DiscountValue: d("3.00"),
			StartDate:     now.Add(-time.Hour),
			EndDate:       now.Add(time.Hour),
			Active:        true,
		}
		assert.Equal(t, "3.00", p.CalculateDiscount(d("10.00"), now).StringFixed(2))
		assert.Equal(t, "2.50", p.CalculateDiscount(d("2.50"), now).StringFixed(2))
	})

	t.Run("percentage above 100 is clamped", func(t *testing.T) {
		p := tenPercentOverFive()
		p.DiscountValue = d("150")
		assert.Equal(t, "6.48", p.CalculateDiscount(d("6.48"), now).StringFixed(2))
	})
}

func TestEligibility(t *testing.T) {
	p := tenPercentOverFive()
	assert.True(t, p.Unrestricted())
	assert.True(t, p.CoversLine(7, 3))

	p.EligibleProductIDs = []uint{7}
	p.EligibleCategoryIDs = []uint{2}
	assert.True(t, p.CoversLine(7, 9))
	assert.True(t, p.CoversLine(8, 2))
	assert.False(t, p.CoversLine(8, 3))

	lines := []Line{
		{ProductID: 7, CategoryID: 9, Total: d("1.50")},
		{ProductID: 8, CategoryID: 2, Total: d("2.00")},
		{ProductID: 1, CategoryID: 3, Total: d("9.96")},
	}
	assert.Equal(t, "3.50", p.EligibleAmount(lines).StringFixed(2))

	p.EligibleProductIDs, p.EligibleCategoryIDs = nil, nil
	assert.Equal(t, "13.46", p.EligibleAmount(lines).StringFixed(2))
	assert.True(t, p.EligibleAmount(nil).IsZero())
}

func TestDiscountOn(t *testing.T) {
	p := tenPercentOverFive()

	assert.Equal(t, "0.15", p.DiscountOn(d("11.46"), d("1.50"), now).StringFixed(2))
	assert.True(t, p.DiscountOn(d("4.00"), d("1.50"), now).IsZero(), "minimum is checked on the subtotal")
	assert.True(t, p.DiscountOn(d("11.46"), decimal.Zero, now).IsZero())

	p.Type = TypeFixedAmount
	p.DiscountValue = d("5.00")
	assert.Equal(t, "1.50", p.DiscountOn(d("11.46"), d("1.50"), now).StringFixed(2), "clamped to the covered lines")
}
