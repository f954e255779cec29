package query

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/store/memstore"
	"github.com/tair/station-pos/internal/transaction/domain"
)

var day = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *memstore.Store, number string, cashier uint, at time.Time, total string, status domain.Status) *domain.Transaction {
	t.Helper()
	amount := decimal.RequireFromString(total)
	txn := &domain.Transaction{
		TransactionNumber: number,
		Subtotal:          amount,
		TaxAmount:         decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       amount,
		PaymentMethod:     domain.PaymentCash,
		Status:            status,
		TransactionDate:   at,
		CashierID:         cashier,
	}
	require.NoError(t, s.CreateTransaction(context.Background(), txn))
	return txn
}

func TestGetTransaction(t *testing.T) {
	s := memstore.New()
	txn := seed(t, s, "TXN-1", 1, day.Add(time.Hour), "4.74", domain.StatusCompleted)
	h := NewGetTransactionHandler(s)

	got, err := h.Handle(context.Background(), GetTransactionQuery{ID: txn.ID})
	require.NoError(t, err)
	assert.Equal(t, "TXN-1", got.TransactionNumber)

	_, err = h.Handle(context.Background(), GetTransactionQuery{ID: 999})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = h.Handle(context.Background(), GetTransactionQuery{})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestListTransactions(t *testing.T) {
	s := memstore.New()
	seed(t, s, "TXN-1", 1, day.Add(1*time.Hour), "1.00", domain.StatusCompleted)
	seed(t, s, "TXN-2", 2, day.Add(2*time.Hour), "2.00", domain.StatusCompleted)
	seed(t, s, "TXN-3", 1, day.Add(3*time.Hour), "3.00", domain.StatusCancelled)
	seed(t, s, "TXN-4", 1, day.Add(26*time.Hour), "4.00", domain.StatusCompleted)
	h := NewListTransactionsHandler(s)
	ctx := context.Background()

	cashier := uint(1)
	from, to := day, day.Add(24*time.Hour)

	tests := []struct {
		name    string
		query   ListTransactionsQuery
		want    []string
		wantErr error
	}{
		{"all newest first", ListTransactionsQuery{}, []string{"TXN-4", "TXN-3", "TXN-2", "TXN-1"}, nil},
		{"by cashier", ListTransactionsQuery{CashierID: &cashier}, []string{"TXN-4", "TXN-3", "TXN-1"}, nil},
		{"by range", ListTransactionsQuery{From: &from, To: &to}, []string{"TXN-3", "TXN-2", "TXN-1"}, nil},
		{"by status", ListTransactionsQuery{Status: domain.StatusCancelled}, []string{"TXN-3"}, nil},
		{"paged", ListTransactionsQuery{Limit: 2, Offset: 1}, []string{"TXN-3", "TXN-2"}, nil},
		{"bad status", ListTransactionsQuery{Status: "REFUNDED"}, nil, apperror.ErrInvalidInput},
		{"inverted range", ListTransactionsQuery{From: &to, To: &from}, nil, apperror.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := h.Handle(ctx, tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			numbers := make([]string, 0, len(txns))
			for _, txn := range txns {
				numbers = append(numbers, txn.TransactionNumber)
			}
			assert.Equal(t, tt.want, numbers)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0))
	assert.Equal(t, 10, clampLimit(-5))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, 100, clampLimit(1000))
}

func TestSalesSummary(t *testing.T) {
	s := memstore.New()
	seed(t, s, "TXN-1", 1, day.Add(1*time.Hour), "4.74", domain.StatusCompleted)
	seed(t, s, "TXN-2", 2, day.Add(2*time.Hour), "6.24", domain.StatusCompleted)
	seed(t, s, "TXN-3", 1, day.Add(3*time.Hour), "9.99", domain.StatusCancelled)
	seed(t, s, "TXN-4", 1, day.Add(24*time.Hour), "1.00", domain.StatusCompleted)
	h := NewSalesSummaryHandler(s)

	summary, err := h.Handle(context.Background(), SalesSummaryQuery{From: day, To: day.Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TransactionCount)
	assert.Equal(t, "10.98", summary.TotalAmount.StringFixed(2))

	_, err = h.Handle(context.Background(), SalesSummaryQuery{From: day})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
