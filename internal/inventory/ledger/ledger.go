// Package ledger is the stock of record for products and lottery games.
//
// Every product mutation is a single conditional update followed by an
// append-only InventoryTransaction row. Lottery stock follows the same
// atomicity rules without audit entries.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/domain"
	"github.com/tair/station-pos/internal/store"
	"github.com/tair/station-pos/pkg/metrics"
)

// MaxQuantity bounds the size of any single stock mutation.
const MaxQuantity = 1_000_000

func checkQuantity(what string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%s must be at least 1: %w", what, apperror.ErrInvalidInput)
	}
	if qty > MaxQuantity {
		return fmt.Errorf("%s must not exceed %d: %w", what, MaxQuantity, apperror.ErrInvalidInput)
	}
	return nil
}

func checkText(reference, notes string) error {
	if len(reference) > domain.MaxReferenceLength {
		return fmt.Errorf("reference must be at most %d bytes: %w", domain.MaxReferenceLength, apperror.ErrInvalidInput)
	}
	if len(notes) > domain.MaxNotesLength {
		return fmt.Errorf("notes must be at most %d bytes: %w", domain.MaxNotesLength, apperror.ErrInvalidInput)
	}
	return nil
}

// Result is the outcome of a product stock mutation.
type Result struct {
	Product  *catalogdomain.Product       `json:"product"`
	Entry    *domain.InventoryTransaction `json:"entry"`
	LowStock bool                         `json:"low_stock"`
}

// RestockRequest adds received units to a product.
type RestockRequest struct {
	ProductID uint
	Quantity  int
	UserID    uint
	Reference string
	Notes     string
	// SourceEventID makes the restock idempotent. A second restock with the
	// same id fails with apperror.ErrDuplicateEvent and changes nothing.
	SourceEventID string
}

// AdjustRequest applies a signed correction to a product.
type AdjustRequest struct {
	ProductID uint
	Delta     int
	Reason    domain.EntryType
	UserID    uint
	Reference string
	Notes     string
}

// Ledger runs each operation in its own unit of work.
type Ledger struct {
	store store.Store
	clock func() time.Time
}

// New creates a new ledger
func New(s store.Store) *Ledger {
	return &Ledger{store: s, clock: time.Now}
}

// WithClock returns a copy of the ledger that stamps entries with clock.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	return &Ledger{store: l.store, clock: clock}
}

// Bind returns a ledger that runs inside an existing unit of work.
func (l *Ledger) Bind(tx store.Repositories) *Bound {
	return &Bound{repos: tx, clock: l.clock}
}

func (l *Ledger) within(ctx context.Context, fn func(b *Bound) error) error {
	return l.store.WithinTx(ctx, func(tx store.Repositories) error {
		return fn(l.Bind(tx))
	})
}

// ReserveAndDecrement sells qty units of a product.
func (l *Ledger) ReserveAndDecrement(ctx context.Context, productID uint, qty int, userID uint, reference string) (*Result, error) {
	var res *Result
	err := l.within(ctx, func(b *Bound) (err error) {
		res, err = b.ReserveAndDecrement(ctx, productID, qty, userID, reference)
		return err
	})
	return res, err
}

// Restock adds received units to a product.
func (l *Ledger) Restock(ctx context.Context, req RestockRequest) (*Result, error) {
	var res *Result
	err := l.within(ctx, func(b *Bound) (err error) {
		res, err = b.Restock(ctx, req)
		return err
	})
	return res, err
}

// Adjust applies a signed correction to a product.
func (l *Ledger) Adjust(ctx context.Context, req AdjustRequest) (*Result, error) {
	var res *Result
	err := l.within(ctx, func(b *Bound) (err error) {
		res, err = b.Adjust(ctx, req)
		return err
	})
	return res, err
}

// SellLotteryTickets removes qty tickets from a lottery game.
func (l *Ledger) SellLotteryTickets(ctx context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error) {
	var game *catalogdomain.LotteryGame
	err := l.within(ctx, func(b *Bound) (err error) {
		game, err = b.SellLotteryTickets(ctx, gameID, qty)
		return err
	})
	return game, err
}

// RestockLotteryPacks adds whole packs to a lottery game.
func (l *Ledger) RestockLotteryPacks(ctx context.Context, gameID uint, packs int) (*catalogdomain.LotteryGame, error) {
	var game *catalogdomain.LotteryGame
	err := l.within(ctx, func(b *Bound) (err error) {
		game, err = b.RestockLotteryPacks(ctx, gameID, packs)
		return err
	})
	return game, err
}

// Bound is a ledger scoped to one unit of work. Its mutations commit or roll
// back with that unit.
type Bound struct {
	repos store.Repositories
	clock func() time.Time
}

// ReserveAndDecrement atomically takes qty units if at least qty are on hand
// and appends a SALE entry.
func (b *Bound) ReserveAndDecrement(ctx context.Context, productID uint, qty int, userID uint, reference string) (*Result, error) {
	if err := checkQuantity("quantity", qty); err != nil {
		return nil, err
	}
	if err := checkText(reference, ""); err != nil {
		return nil, err
	}

	product, err := b.repos.DecrementProductStock(ctx, productID, qty)
	if err != nil {
		metrics.ObserveStockRejection("product", err)
		return nil, err
	}
	return b.record(ctx, product, &domain.InventoryTransaction{
		Type:           domain.EntrySale,
		QuantityChange: -qty,
		UserID:         userID,
		Reference:      reference,
	})
}

// Restock increments stock and appends a RESTOCK entry.
func (b *Bound) Restock(ctx context.Context, req RestockRequest) (*Result, error) {
	if err := checkQuantity("restock quantity", req.Quantity); err != nil {
		return nil, err
	}
	if err := checkText(req.Reference, req.Notes); err != nil {
		return nil, err
	}

	entry := &domain.InventoryTransaction{
		Type:           domain.EntryRestock,
		QuantityChange: req.Quantity,
		UserID:         req.UserID,
		Reference:      req.Reference,
		Notes:          req.Notes,
	}
	if len(req.SourceEventID) > domain.MaxSourceEventIDLength {
		return nil, fmt.Errorf("source event id must be at most %d bytes: %w", domain.MaxSourceEventIDLength, apperror.ErrInvalidInput)
	}
	if req.SourceEventID != "" {
		_, err := b.repos.EntryBySourceEvent(ctx, req.SourceEventID)
		switch {
		case err == nil:
			return nil, fmt.Errorf("event %s: %w", req.SourceEventID, apperror.ErrDuplicateEvent)
		case !errors.Is(err, apperror.ErrNotFound):
			return nil, err
		}
		eventID := req.SourceEventID
		entry.SourceEventID = &eventID
	}

	product, err := b.repos.IncrementProductStock(ctx, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return b.record(ctx, product, entry)
}

// Adjust applies a signed delta and appends an ADJUSTMENT or WASTE entry.
// It fails with apperror.ErrInvalidAdjustment when stock would go negative.
func (b *Bound) Adjust(ctx context.Context, req AdjustRequest) (*Result, error) {
	switch {
	case req.Delta == 0:
		return nil, fmt.Errorf("adjustment delta must not be zero: %w", apperror.ErrInvalidInput)
	case req.Delta > MaxQuantity || req.Delta < -MaxQuantity:
		return nil, fmt.Errorf("adjustment delta must be within ±%d: %w", MaxQuantity, apperror.ErrInvalidInput)
	case req.Reason != domain.EntryAdjustment && req.Reason != domain.EntryWaste:
		return nil, fmt.Errorf("adjustment reason must be ADJUSTMENT or WASTE, got %q: %w", req.Reason, apperror.ErrInvalidInput)
	case req.Reason == domain.EntryWaste && req.Delta > 0:
		return nil, fmt.Errorf("waste must remove stock: %w", apperror.ErrInvalidInput)
	}
	if err := checkText(req.Reference, req.Notes); err != nil {
		return nil, err
	}

	product, err := b.repos.AdjustProductStock(ctx, req.ProductID, req.Delta)
	if err != nil {
		metrics.ObserveStockRejection("product", err)
		return nil, err
	}
	return b.record(ctx, product, &domain.InventoryTransaction{
		Type:           req.Reason,
		QuantityChange: req.Delta,
		UserID:         req.UserID,
		Reference:      req.Reference,
		Notes:          req.Notes,
	})
}

// SellLotteryTickets atomically takes qty tickets if at least qty remain.
func (b *Bound) SellLotteryTickets(ctx context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error) {
	if err := checkQuantity("quantity", qty); err != nil {
		return nil, err
	}

	game, err := b.repos.DecrementLotteryStock(ctx, gameID, qty)
	if err != nil {
		metrics.ObserveStockRejection("lottery", err)
		return nil, err
	}
	return game, nil
}

// ReturnLotteryTickets puts qty tickets back on a game.
func (b *Bound) ReturnLotteryTickets(ctx context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error) {
	if err := checkQuantity("quantity", qty); err != nil {
		return nil, err
	}
	return b.repos.IncrementLotteryStock(ctx, gameID, qty)
}

// RestockLotteryPacks adds packs × packCount tickets.
func (b *Bound) RestockLotteryPacks(ctx context.Context, gameID uint, packs int) (*catalogdomain.LotteryGame, error) {
	if err := checkQuantity("pack count", packs); err != nil {
		return nil, err
	}

	game, err := b.repos.LotteryGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PackCount < 1 {
		return nil, fmt.Errorf("lottery game %d has no pack size: %w", gameID, apperror.ErrInvalidInput)
	}
	if packs > MaxQuantity/game.PackCount {
		return nil, fmt.Errorf("%d packs of %d tickets exceeds %d: %w", packs, game.PackCount, MaxQuantity, apperror.ErrInvalidInput)
	}
	return b.repos.IncrementLotteryStock(ctx, gameID, packs*game.PackCount)
}

// record completes entry from the mutated product and appends it.
func (b *Bound) record(ctx context.Context, product *catalogdomain.Product, entry *domain.InventoryTransaction) (*Result, error) {
	entry.ProductID = product.ID
	entry.StockBefore = product.CurrentStock - entry.QuantityChange
	entry.StockAfter = product.CurrentStock
	entry.CreatedAt = b.clock().UTC()
	if err := b.repos.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}

	return &Result{
		Product:  product,
		Entry:    entry,
		LowStock: product.IsLowStock(),
	}, nil
}
