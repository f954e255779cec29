package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	inventorydomain "github.com/tair/station-pos/internal/inventory/domain"
	promotiondomain "github.com/tair/station-pos/internal/promotion/domain"
	txdomain "github.com/tair/station-pos/internal/transaction/domain"
)

func copyTransaction(t txdomain.Transaction) txdomain.Transaction {
	items := make([]txdomain.TransactionItem, len(t.Items))
	copy(items, t.Items)
	t.Items = items
	return t
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// catalog

func (r *repos) ProductByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, apperror.ErrNotFound)
	}
	return &p, nil
}

func (r *repos) ProductByBarcode(_ context.Context, barcode string) (*catalogdomain.Product, error) {
	for _, p := range r.st.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product with barcode %q: %w", barcode, apperror.ErrNotFound)
}

func (r *repos) ProductsByIDs(_ context.Context, ids []uint) (map[uint]*catalogdomain.Product, error) {
	out := make(map[uint]*catalogdomain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.st.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r *repos) CategoriesByIDs(_ context.Context, ids []uint) (map[uint]*catalogdomain.Category, error) {
	out := make(map[uint]*catalogdomain.Category, len(ids))
	for _, id := range ids {
		if c, ok := r.st.categories[id]; ok {
			out[id] = &c
		}
	}
	return out, nil
}

func (r *repos) LotteryGameByID(_ context.Context, id uint) (*catalogdomain.LotteryGame, error) {
	g, ok := r.st.games[id]
	if !ok {
		return nil, fmt.Errorf("lottery game %d: %w", id, apperror.ErrNotFound)
	}
	return &g, nil
}

func (r *repos) LotteryGameByBarcode(_ context.Context, barcode string) (*catalogdomain.LotteryGame, error) {
	for _, g := range r.st.games {
		if g.Barcode != nil && *g.Barcode == barcode {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("lottery game with barcode %q: %w", barcode, apperror.ErrNotFound)
}

func (r *repos) LotteryGamesByIDs(_ context.Context, ids []uint) (map[uint]*catalogdomain.LotteryGame, error) {
	out := make(map[uint]*catalogdomain.LotteryGame, len(ids))
	for _, id := range ids {
		if g, ok := r.st.games[id]; ok {
			out[id] = &g
		}
	}
	return out, nil
}

func (r *repos) LowStockProducts(_ context.Context, limit, offset int) ([]catalogdomain.Product, error) {
	var low []catalogdomain.Product
	for _, p := range r.st.products {
		if p.Active && p.IsLowStock() {
			low = append(low, p)
		}
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].CurrentStock != low[j].CurrentStock {
			return low[i].CurrentStock < low[j].CurrentStock
		}
		return low[i].ID < low[j].ID
	})
	return paginate(low, limit, offset), nil
}

// promotions

func (r *repos) PromotionByID(_ context.Context, id uint) (*promotiondomain.Promotion, error) {
	p, ok := r.st.promotions[id]
	if !ok {
		return nil, fmt.Errorf("promotion %d: %w", id, apperror.ErrNotFound)
	}
	return &p, nil
}

func (r *repos) ActivePromotions(context.Context) ([]promotiondomain.Promotion, error) {
	var out []promotiondomain.Promotion
	for _, p := range r.st.promotions {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// stock

func (r *repos) shiftProduct(id uint, delta int, guard func(stock int) bool, rejection error) (*catalogdomain.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, apperror.ErrNotFound)
	}
	if guard != nil && !guard(p.CurrentStock) {
		return nil, fmt.Errorf("product %d: %w", id, rejection)
	}
	p.CurrentStock += delta
	p.UpdatedAt = r.clock()
	r.st.products[id] = p
	return &p, nil
}

func (r *repos) shiftGame(id uint, delta int, guard func(stock int) bool) (*catalogdomain.LotteryGame, error) {
	g, ok := r.st.games[id]
	if !ok {
		return nil, fmt.Errorf("lottery game %d: %w", id, apperror.ErrNotFound)
	}
	if guard != nil && !guard(g.CurrentStock) {
		return nil, fmt.Errorf("lottery game %d: %w", id, apperror.ErrInsufficientStock)
	}
	g.CurrentStock += delta
	g.UpdatedAt = r.clock()
	r.st.games[id] = g
	return &g, nil
}

func (r *repos) DecrementProductStock(_ context.Context, productID uint, qty int) (*catalogdomain.Product, error) {
	return r.shiftProduct(productID, -qty, func(stock int) bool { return stock >= qty }, apperror.ErrInsufficientStock)
}

func (r *repos) IncrementProductStock(_ context.Context, productID uint, qty int) (*catalogdomain.Product, error) {
	return r.shiftProduct(productID, qty, nil, nil)
}

func (r *repos) AdjustProductStock(_ context.Context, productID uint, delta int) (*catalogdomain.Product, error) {
	return r.shiftProduct(productID, delta, func(stock int) bool { return stock+delta >= 0 }, apperror.ErrInvalidAdjustment)
}

func (r *repos) DecrementLotteryStock(_ context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error) {
	return r.shiftGame(gameID, -qty, func(stock int) bool { return stock >= qty })
}

func (r *repos) IncrementLotteryStock(_ context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error) {
	return r.shiftGame(gameID, qty, nil)
}

// ledger

func (r *repos) AppendEntry(_ context.Context, entry *inventorydomain.InventoryTransaction) error {
	if entry.SourceEventID != nil {
		if _, err := r.entryBySourceEvent(*entry.SourceEventID); err == nil {
			return fmt.Errorf("event %s: %w", *entry.SourceEventID, apperror.ErrDuplicateEvent)
		}
	}
	entry.ID = r.st.id()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.clock()
	}
	r.st.entries = append(r.st.entries, *entry)
	return nil
}

func (r *repos) EntriesByProduct(_ context.Context, productID uint, limit, offset int) ([]inventorydomain.InventoryTransaction, error) {
	var out []inventorydomain.InventoryTransaction
	for i := len(r.st.entries) - 1; i >= 0; i-- {
		if r.st.entries[i].ProductID == productID {
			out = append(out, r.st.entries[i])
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *repos) EntryBySourceEvent(_ context.Context, eventID string) (*inventorydomain.InventoryTransaction, error) {
	return r.entryBySourceEvent(eventID)
}

func (r *repos) entryBySourceEvent(eventID string) (*inventorydomain.InventoryTransaction, error) {
	for i := range r.st.entries {
		if id := r.st.entries[i].SourceEventID; id != nil && *id == eventID {
			e := r.st.entries[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("entry for event %s: %w", eventID, apperror.ErrNotFound)
}

// transactions

func (r *repos) CreateTransaction(_ context.Context, txn *txdomain.Transaction) error {
	if _, taken := r.st.numbers[txn.TransactionNumber]; taken {
		return fmt.Errorf("transaction number %s: %w", txn.TransactionNumber, apperror.ErrDuplicateTransactionNumber)
	}

	now := r.clock()
	txn.ID = r.st.id()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	for i := range txn.Items {
		txn.Items[i].ID = r.st.id()
		txn.Items[i].TransactionID = txn.ID
	}

	r.st.transactions[txn.ID] = copyTransaction(*txn)
	r.st.numbers[txn.TransactionNumber] = txn.ID
	return nil
}

func (r *repos) TransactionByID(_ context.Context, id uint) (*txdomain.Transaction, error) {
	t, ok := r.st.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %d: %w", id, apperror.ErrNotFound)
	}
	t = copyTransaction(t)
	return &t, nil
}

func (r *repos) ListTransactions(_ context.Context, filter txdomain.ListFilter) ([]txdomain.Transaction, error) {
	var out []txdomain.Transaction
	for _, t := range r.st.transactions {
		if filter.CashierID != nil && t.CashierID != *filter.CashierID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.From != nil && t.TransactionDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !t.TransactionDate.Before(*filter.To) {
			continue
		}
		out = append(out, copyTransaction(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.After(out[j].TransactionDate)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *repos) CancelTransaction(_ context.Context, id, userID uint, at time.Time) error {
	t, ok := r.st.transactions[id]
	if !ok {
		return fmt.Errorf("transaction %d: %w", id, apperror.ErrNotFound)
	}
	if err := t.CanVoid(); err != nil {
		return err
	}
	t.Status = txdomain.StatusCancelled
	t.VoidedAt = &at
	t.VoidedBy = &userID
	t.UpdatedAt = at
	r.st.transactions[id] = t
	return nil
}

func (r *repos) SummarizeSales(_ context.Context, from, to time.Time) (*txdomain.SalesSummary, error) {
	summary := &txdomain.SalesSummary{
		From:           from,
		To:             to,
		Subtotal:       decimal.Zero,
		TaxAmount:      decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
	}
	for _, t := range r.st.transactions {
		if t.Status != txdomain.StatusCompleted || t.TransactionDate.Before(from) || !t.TransactionDate.Before(to) {
			continue
		}
		summary.TransactionCount++
		summary.Subtotal = summary.Subtotal.Add(t.Subtotal)
		summary.TaxAmount = summary.TaxAmount.Add(t.TaxAmount)
		summary.DiscountAmount = summary.DiscountAmount.Add(t.DiscountAmount)
		summary.TotalAmount = summary.TotalAmount.Add(t.TotalAmount)
	}
	return summary, nil
}
