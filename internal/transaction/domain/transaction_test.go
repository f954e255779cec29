package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/station-pos/internal/apperror"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFinalize(t *testing.T) {
	txn := &Transaction{
		Items: []TransactionItem{
			{Quantity: 2, UnitPrice: d("1.19"), TotalPrice: d("2.38"), TaxAmount: d("0.20"), DiscountAmount: decimal.Zero},
			{Quantity: 1, UnitPrice: d("2.00"), TotalPrice: d("2.00"), TaxAmount: d("0.16"), DiscountAmount: decimal.Zero},
		},
	}

	require.NoError(t, txn.Finalize())

	assert.Equal(t, StatusCompleted, txn.Status)
	assert.Equal(t, "4.38", txn.Subtotal.StringFixed(2))
	assert.Equal(t, "0.36", txn.TaxAmount.StringFixed(2))
	assert.Equal(t, "0.00", txn.DiscountAmount.StringFixed(2))
	assert.Equal(t, "4.74", txn.TotalAmount.StringFixed(2))
	assert.Equal(t, "2.38", txn.Items[0].FinalPrice.StringFixed(2))

	err := txn.Finalize()
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestCanVoid(t *testing.T) {
	assert.NoError(t, (&Transaction{Status: StatusCompleted}).CanVoid())
	assert.ErrorIs(t, (&Transaction{Status: StatusCancelled}).CanVoid(), apperror.ErrInvalidTransition)
	assert.ErrorIs(t, (&Transaction{Status: StatusPending}).CanVoid(), apperror.ErrInvalidTransition)
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentEBT} {
		assert.True(t, m.Valid(), m)
	}
	assert.False(t, PaymentMethod("BITCOIN").Valid())
}

func TestAllocateDiscount(t *testing.T) {
	sum := func(values []decimal.Decimal) string {
		total := decimal.Zero
		for _, v := range values {
			total = total.Add(v)
		}
		return total.StringFixed(2)
	}

	t.Run("proportional with cent remainder", func(t *testing.T) {
		shares := AllocateDiscount(d("1.00"), []decimal.Decimal{d("1.00"), d("1.00"), d("1.00")}, []bool{true, true, true})
		assert.Equal(t, "1.00", sum(shares))
		assert.Equal(t, "0.34", shares[0].StringFixed(2))
		assert.Equal(t, "0.33", shares[1].StringFixed(2))
		assert.Equal(t, "0.33", shares[2].StringFixed(2))
	})

	t.Run("ineligible lines get nothing", func(t *testing.T) {
		shares := AllocateDiscount(d("0.50"), []decimal.Decimal{d("4.00"), d("6.00")}, []bool{false, true})
		assert.True(t, shares[0].IsZero())
		assert.Equal(t, "0.50", shares[1].StringFixed(2))
	})

	t.Run("clamped to eligible base", func(t *testing.T) {
		shares := AllocateDiscount(d("5.00"), []decimal.Decimal{d("2.00"), d("10.00")}, []bool{true, false})
		assert.Equal(t, "2.00", shares[0].StringFixed(2))
		assert.True(t, shares[1].IsZero())
	})

	t.Run("never exceeds a line total", func(t *testing.T) {
		totals := []decimal.Decimal{d("0.01"), d("0.01"), d("9.98")}
		shares := AllocateDiscount(d("10.00"), totals, []bool{true, true, true})
		assert.Equal(t, "10.00", sum(shares))
		for i := range totals {
			assert.False(t, shares[i].GreaterThan(totals[i]))
		}
	})

	t.Run("zero discount", func(t *testing.T) {
		shares := AllocateDiscount(decimal.Zero, []decimal.Decimal{d("1.00")}, []bool{true})
		assert.True(t, shares[0].IsZero())
	})
}
