package memstore

import (
	"context"
	"time"

	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	inventorydomain "github.com/tair/station-pos/internal/inventory/domain"
	promotiondomain "github.com/tair/station-pos/internal/promotion/domain"
	txdomain "github.com/tair/station-pos/internal/transaction/domain"
)

// Calls made on the Store itself take the lock for their own duration.

func (s *Store) ProductByID(ctx context.Context, id uint) (*catalogdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ProductByID(ctx, id)
}

func (s *Store) ProductByBarcode(ctx context.Context, barcode string) (*catalogdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ProductByBarcode(ctx, barcode)
}

func (s *Store) ProductsByIDs(ctx context.Context, ids []uint) (map[uint]*catalogdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ProductsByIDs(ctx, ids)
}

func (s *Store) CategoriesByIDs(ctx context.Context, ids []uint) (map[uint]*catalogdomain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CategoriesByIDs(ctx, ids)
}

func (s *Store) LotteryGameByID(ctx context.Context, id uint) (*catalogdomain.LotteryGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().LotteryGameByID(ctx, id)
}

func (s *Store) LotteryGameByBarcode(ctx context.Context, barcode string) (*catalogdomain.LotteryGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().LotteryGameByBarcode(ctx, barcode)
}

func (s *Store) LotteryGamesByIDs(ctx context.Context, ids []uint) (map[uint]*catalogdomain.LotteryGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().LotteryGamesByIDs(ctx, ids)
}

func (s *Store) LowStockProducts(ctx context.Context, limit, offset int) ([]catalogdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().LowStockProducts(ctx, limit, offset)
}

func (s *Store) PromotionByID(ctx context.Context, id uint) (*promotiondomain.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().PromotionByID(ctx, id)
}

func (s *Store) ActivePromotions(ctx context.Context) ([]promotiondomain.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ActivePromotions(ctx)
}

func (s *Store) DecrementProductStock(ctx context.Context, productID uint, qty int) (*catalogdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().DecrementProductStock(ctx, productID, qty)
}

func (s *Store) IncrementProductStock(ctx context.Context, productID uint, qty int) (*catalogdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().IncrementProductStock(ctx, productID, qty)
}

func (s *Store) AdjustProductStock(ctx context.Context, productID uint, delta int) (*catalogdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().AdjustProductStock(ctx, productID, delta)
}

func (s *Store) DecrementLotteryStock(ctx context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().DecrementLotteryStock(ctx, gameID, qty)
}

func (s *Store) IncrementLotteryStock(ctx context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().IncrementLotteryStock(ctx, gameID, qty)
}

func (s *Store) AppendEntry(ctx context.Context, entry *inventorydomain.InventoryTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().AppendEntry(ctx, entry)
}

func (s *Store) EntriesByProduct(ctx context.Context, productID uint, limit, offset int) ([]inventorydomain.InventoryTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().EntriesByProduct(ctx, productID, limit, offset)
}

func (s *Store) EntryBySourceEvent(ctx context.Context, eventID string) (*inventorydomain.InventoryTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().EntryBySourceEvent(ctx, eventID)
}

func (s *Store) CreateTransaction(ctx context.Context, txn *txdomain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateTransaction(ctx, txn)
}

func (s *Store) TransactionByID(ctx context.Context, id uint) (*txdomain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().TransactionByID(ctx, id)
}

func (s *Store) ListTransactions(ctx context.Context, filter txdomain.ListFilter) ([]txdomain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ListTransactions(ctx, filter)
}

func (s *Store) CancelTransaction(ctx context.Context, id, userID uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CancelTransaction(ctx, id, userID, at)
}

func (s *Store) SummarizeSales(ctx context.Context, from, to time.Time) (*txdomain.SalesSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().SummarizeSales(ctx, from, to)
}
