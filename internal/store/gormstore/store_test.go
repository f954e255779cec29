package gormstore_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	inventorydomain "github.com/tair/station-pos/internal/inventory/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	promotiondomain "github.com/tair/station-pos/internal/promotion/domain"
	"github.com/tair/station-pos/internal/store"
	"github.com/tair/station-pos/internal/store/gormstore"
	txdomain "github.com/tair/station-pos/internal/transaction/domain"
	"github.com/tair/station-pos/internal/transaction/usecase/command"
	"github.com/tair/station-pos/kafka"
)

var now = time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)

func newStore(t *testing.T) (*gormstore.Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s := gormstore.New(db)
	require.NoError(t, s.AutoMigrate())
	return s, db
}

type seeded struct {
	category *catalogdomain.Category
	chips    *catalogdomain.Product
	game     *catalogdomain.LotteryGame
}

func seed(t *testing.T, db *gorm.DB) seeded {
	t.Helper()
	category := &catalogdomain.Category{Name: "Snacks", TaxRate: decimal.NewNullDecimal(decimal.RequireFromString("8.25")), Active: true}
	require.NoError(t, db.Create(category).Error)

	barcode := "028400090865"
	chips := &catalogdomain.Product{
		Name:             "Chips",
		Barcode:          &barcode,
		Price:            decimal.RequireFromString("2.49"),
		Cost:             decimal.RequireFromString("1.20"),
		CurrentStock:     5,
		ReorderThreshold: 2,
		Active:           true,
		CategoryID:       category.ID,
	}
	require.NoError(t, db.Create(chips).Error)

	game := &catalogdomain.LotteryGame{
		Name:         "Lucky 7s",
		TicketPrice:  decimal.RequireFromString("2.00"),
		PackCost:     decimal.RequireFromString("54.00"),
		PackCount:    30,
		CurrentStock: 4,
		Active:       true,
	}
	require.NoError(t, db.Create(game).Error)

	return seeded{category: category, chips: chips, game: game}
}

func TestCatalogLookups(t *testing.T) {
	s, db := newStore(t)
	data := seed(t, db)
	ctx := context.Background()

	p, err := s.ProductByBarcode(ctx, "028400090865")
	require.NoError(t, err)
	assert.Equal(t, data.chips.ID, p.ID)
	assert.Equal(t, "2.49", p.Price.StringFixed(2))

	_, err = s.ProductByID(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	categories, err := s.CategoriesByIDs(ctx, []uint{data.category.ID})
	require.NoError(t, err)
	require.Contains(t, categories, data.category.ID)
	assert.Equal(t, "8.25", categories[data.category.ID].TaxRate.Decimal.StringFixed(2))

	games, err := s.LotteryGamesByIDs(ctx, []uint{data.game.ID, 42})
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestProductStockGuards(t *testing.T) {
	s, db := newStore(t)
	data := seed(t, db)
	ctx := context.Background()

	p, err := s.DecrementProductStock(ctx, data.chips.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentStock)

	_, err = s.DecrementProductStock(ctx, data.chips.ID, 3)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	_, err = s.DecrementProductStock(ctx, 999, 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = s.AdjustProductStock(ctx, data.chips.ID, -3)
	assert.ErrorIs(t, err, apperror.ErrInvalidAdjustment)

	p, err = s.AdjustProductStock(ctx, data.chips.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CurrentStock)

	p, err = s.IncrementProductStock(ctx, data.chips.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, p.CurrentStock)

	g, err := s.DecrementLotteryStock(ctx, data.game.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, g.CurrentStock)
	_, err = s.DecrementLotteryStock(ctx, data.game.ID, 1)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
}

func TestLowStockProducts(t *testing.T) {
	s, db := newStore(t)
	data := seed(t, db)
	ctx := context.Background()

	low, err := s.LowStockProducts(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = s.DecrementProductStock(ctx, data.chips.ID, 3)
	require.NoError(t, err)

	low, err = s.LowStockProducts(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, data.chips.ID, low[0].ID)
}

func TestWithinTx_RollsBack(t *testing.T) {
	s, db := newStore(t)
	data := seed(t, db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx store.Repositories) error {
		if _, err := tx.DecrementProductStock(ctx, data.chips.ID, 5); err != nil {
			return err
		}
		if err := tx.AppendEntry(ctx, &inventorydomain.InventoryTransaction{
			Type:           inventorydomain.EntrySale,
			ProductID:      data.chips.ID,
			QuantityChange: -5,
			StockBefore:    5,
			StockAfter:     0,
			UserID:         1,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.ProductByID(ctx, data.chips.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.CurrentStock)

	entries, err := s.EntriesByProduct(ctx, data.chips.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func newTransaction(number string, at time.Time, total string, productID uint) *txdomain.Transaction {
	amount := decimal.RequireFromString(total)
	return &txdomain.Transaction{
		TransactionNumber: number,
		Subtotal:          amount,
		TaxAmount:         decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       amount,
		PaymentMethod:     txdomain.PaymentCash,
		Status:            txdomain.StatusCompleted,
		TransactionDate:   at,
		CashierID:         1,
		Items: []txdomain.TransactionItem{{
			LineNumber:     1,
			ProductID:      &productID,
			Description:    "Chips",
			Quantity:       1,
			UnitPrice:      amount,
			TotalPrice:     amount,
			TaxAmount:      decimal.Zero,
			DiscountAmount: decimal.Zero,
			FinalPrice:     amount,
		}},
	}
}

func TestTransactions(t *testing.T) {
	s, db := newStore(t)
	data := seed(t, db)
	ctx := context.Background()

	first := newTransaction("TXN-20261016-000001-AAAA", now, "2.49", data.chips.ID)
	require.NoError(t, s.CreateTransaction(ctx, first))
	require.NoError(t, s.CreateTransaction(ctx, newTransaction("TXN-20261016-000002-BBBB", now.Add(time.Minute), "4.98", data.chips.ID)))

	err := s.CreateTransaction(ctx, newTransaction("TXN-20261016-000001-AAAA", now, "1.00", data.chips.ID))
	assert.ErrorIs(t, err, apperror.ErrDuplicateTransactionNumber)

	got, err := s.TransactionByID(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "2.49", got.Items[0].FinalPrice.StringFixed(2))

	list, err := s.ListTransactions(ctx, txdomain.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "TXN-20261016-000002-BBBB", list[0].TransactionNumber)

	require.NoError(t, s.CancelTransaction(ctx, first.ID, 9, now.Add(time.Hour)))
	assert.ErrorIs(t, s.CancelTransaction(ctx, first.ID, 9, now.Add(time.Hour)), apperror.ErrInvalidTransition)
	assert.ErrorIs(t, s.CancelTransaction(ctx, 999, 9, now), apperror.ErrNotFound)

	cancelled, err := s.ListTransactions(ctx, txdomain.ListFilter{Status: txdomain.StatusCancelled, Limit: 10})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	require.NotNil(t, cancelled[0].VoidedBy)
	assert.Equal(t, uint(9), *cancelled[0].VoidedBy)

	summary, err := s.SummarizeSales(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TransactionCount)
	assert.Equal(t, "4.98", summary.TotalAmount.StringFixed(2))
}

func TestActivePromotions(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()

	active := &promotiondomain.Promotion{
		Name:               "10% off",
		Type:               promotiondomain.TypePercentage,
		DiscountValue:      decimal.RequireFromString("10"),
		StartDate:          now.Add(-time.Hour),
		EndDate:            now.Add(time.Hour),
		Active:             true,
		EligibleProductIDs: []uint{1, 2},
	}
	inactive := &promotiondomain.Promotion{
		Name:          "retired",
		Type:          promotiondomain.TypeFixedAmount,
		DiscountValue: decimal.RequireFromString("1"),
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
	}
	require.NoError(t, db.Create(active).Error)
	require.NoError(t, db.Create(inactive).Error)

	promotions, err := s.ActivePromotions(ctx)
	require.NoError(t, err)
	require.Len(t, promotions, 1)
	assert.Equal(t, []uint{1, 2}, promotions[0].EligibleProductIDs)

	_, err = s.PromotionByID(ctx, inactive.ID)
	assert.NoError(t, err)
	_, err = s.PromotionByID(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSettleOnSQLite(t *testing.T) {
	s, db := newStore(t)
	data := seed(t, db)
	ctx := context.Background()

	settle := command.NewSettleTransactionHandler(s, ledger.New(s), &countingNumbers{}, kafka.NoopPublisher{}, command.DefaultSettlementOptions()).
		WithClock(func() time.Time { return now })

	txn, err := settle.Handle(ctx, command.SettleTransactionCommand{
		Items: []command.SettleItem{
			{ProductID: &data.chips.ID, Quantity: 2},
			{LotteryGameID: &data.game.ID, Quantity: 1},
		},
		PaymentMethod: txdomain.PaymentCash,
		CashierID:     3,
	})
	require.NoError(t, err)

	// 4.98 + 0.41 tax + 2.00 lottery
	assert.Equal(t, "7.39", txn.TotalAmount.StringFixed(2))

	p, err := s.ProductByID(ctx, data.chips.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CurrentStock)

	entries, err := s.EntriesByProduct(ctx, data.chips.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, inventorydomain.EntrySale, entries[0].Type)
	assert.Equal(t, -2, entries[0].QuantityChange)
	assert.Equal(t, txn.TransactionNumber, entries[0].Reference)

	_, err = settle.Handle(ctx, command.SettleTransactionCommand{
		Items:         []command.SettleItem{{ProductID: &data.chips.ID, Quantity: 4}},
		PaymentMethod: txdomain.PaymentCash,
		CashierID:     3,
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	p, err = s.ProductByID(ctx, data.chips.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CurrentStock)
}

type countingNumbers struct{ n atomic.Int64 }

func (c *countingNumbers) Next(context.Context) string {
	return fmt.Sprintf("TXN-%s-%06d-TEST", now.Format("20060102"), c.n.Add(1))
}
