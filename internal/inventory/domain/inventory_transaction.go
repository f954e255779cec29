package domain

import (
	"context"
	"time"

	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
)

// EntryType classifies a ledger entry
type EntryType string

// Ledger entry types
const (
	EntryRestock    EntryType = "RESTOCK"
	EntrySale       EntryType = "SALE"
	EntryAdjustment EntryType = "ADJUSTMENT"
	EntryWaste      EntryType = "WASTE"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryRestock, EntrySale, EntryAdjustment, EntryWaste:
		return true
	}
	return false
}

// Column widths of the free-text entry fields
const (
	MaxReferenceLength     = 32
	MaxNotesLength         = 500
	MaxSourceEventIDLength = 64
)

// InventoryTransaction is the append-only audit record of one product stock mutation.
type InventoryTransaction struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Type           EntryType `json:"type" gorm:"size:20;not null;index"`
	ProductID      uint      `json:"product_id" gorm:"not null;index:idx_inventory_transactions_product_created,priority:1"`
	QuantityChange int       `json:"quantity_change" gorm:"not null"`
	StockBefore    int       `json:"stock_before" gorm:"not null"`
	StockAfter     int       `json:"stock_after" gorm:"not null"`
	UserID         uint      `json:"user_id" gorm:"not null"`
	Reference      string    `json:"reference,omitempty" gorm:"size:32;index"`
	Notes          string    `json:"notes,omitempty" gorm:"size:500"`
	// SourceEventID is the id of the inbound event that produced the entry.
	SourceEventID  *string   `json:"source_event_id,omitempty" gorm:"size:64;uniqueIndex"`
	CreatedAt      time.Time `json:"created_at" gorm:"not null;index:idx_inventory_transactions_product_created,priority:2"`
}

// TableName specifies the table name
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// Quantity is the unsigned size of the mutation.
func (e *InventoryTransaction) Quantity() int {
	if e.QuantityChange < 0 {
		return -e.QuantityChange
	}
	return e.QuantityChange
}

// StockRepository performs atomic conditional stock mutations. Every method
// returns the row as it stands after the mutation.
type StockRepository interface {
	// DecrementProductStock fails with apperror.ErrInsufficientStock when stock < qty.
	DecrementProductStock(ctx context.Context, productID uint, qty int) (*catalogdomain.Product, error)
	IncrementProductStock(ctx context.Context, productID uint, qty int) (*catalogdomain.Product, error)
	// AdjustProductStock fails with apperror.ErrInvalidAdjustment when stock + delta < 0.
	AdjustProductStock(ctx context.Context, productID uint, delta int) (*catalogdomain.Product, error)
	DecrementLotteryStock(ctx context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error)
	IncrementLotteryStock(ctx context.Context, gameID uint, qty int) (*catalogdomain.LotteryGame, error)
}

// EntryRepository stores ledger entries
type EntryRepository interface {
	AppendEntry(ctx context.Context, entry *InventoryTransaction) error
	// EntriesByProduct lists entries newest first.
	EntriesByProduct(ctx context.Context, productID uint, limit, offset int) ([]InventoryTransaction, error)
	// EntryBySourceEvent fails with apperror.ErrNotFound when no entry carries eventID.
	EntryBySourceEvent(ctx context.Context, eventID string) (*InventoryTransaction, error)
}
