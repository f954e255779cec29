package query

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/internal/store/memstore"
)

func TestGetProduct(t *testing.T) {
	s := memstore.New()
	barcode := "012345678905"
	p := &catalogdomain.Product{Name: "Coffee", Barcode: &barcode, Price: decimal.RequireFromString("2.00"), Cost: decimal.RequireFromString("0.50"), CurrentStock: 3, ReorderThreshold: 5, Active: true}
	s.SeedProduct(p)
	h := NewGetProductHandler(s)
	ctx := context.Background()

	view, err := h.Handle(ctx, GetProductQuery{ID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, "1.50", view.Margin.StringFixed(2))
	assert.Equal(t, "75.00", view.MarginPercentage.StringFixed(2))
	assert.True(t, view.LowStock)

	view, err = h.Handle(ctx, GetProductQuery{Barcode: barcode})
	require.NoError(t, err)
	assert.Equal(t, p.ID, view.ID)

	_, err = h.Handle(ctx, GetProductQuery{Barcode: "missing"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = h.Handle(ctx, GetProductQuery{})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestListLowStock(t *testing.T) {
	s := memstore.New()
	s.SeedProduct(&catalogdomain.Product{Name: "A", CurrentStock: 1, ReorderThreshold: 2, Active: true})
	s.SeedProduct(&catalogdomain.Product{Name: "B", CurrentStock: 9, ReorderThreshold: 2, Active: true})
	s.SeedProduct(&catalogdomain.Product{Name: "C", CurrentStock: 0, ReorderThreshold: 2, Active: true})
	s.SeedProduct(&catalogdomain.Product{Name: "D", CurrentStock: 0, ReorderThreshold: 2, Active: false})

	views, err := NewListLowStockHandler(s).Handle(context.Background(), ListLowStockQuery{})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "C", views[0].Name)
	assert.Equal(t, "A", views[1].Name)
}

func TestListProductLedger(t *testing.T) {
	s := memstore.New()
	p := &catalogdomain.Product{Name: "Bread", CurrentStock: 5, Active: true}
	s.SeedProduct(p)
	l := ledger.New(s)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Restock(ctx, ledger.RestockRequest{ProductID: p.ID, Quantity: i + 1, UserID: 1})
		require.NoError(t, err)
	}

	h := NewListProductLedgerHandler(s, s)
	entries, err := h.Handle(ctx, ListProductLedgerQuery{ProductID: p.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].QuantityChange)
	assert.Equal(t, 2, entries[1].QuantityChange)

	_, err = h.Handle(ctx, ListProductLedgerQuery{ProductID: 404})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetLotteryGame(t *testing.T) {
	s := memstore.New()
	barcode := "LOT-100"
	g := &catalogdomain.LotteryGame{Name: "Bingo", Barcode: &barcode, TicketPrice: decimal.RequireFromString("3.00"), PackCost: decimal.RequireFromString("81.00"), PackCount: 30, Active: true}
	s.SeedLotteryGame(g)
	h := NewGetLotteryGameHandler(s)

	view, err := h.Handle(context.Background(), GetLotteryGameQuery{Barcode: barcode})
	require.NoError(t, err)
	assert.Equal(t, "90.00", view.PackValue.StringFixed(2))
	assert.Equal(t, "9.00", view.PackProfit.StringFixed(2))

	_, err = h.Handle(context.Background(), GetLotteryGameQuery{ID: 77})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
