package query

import (
	"context"
	"fmt"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/domain"
)

// ListProductLedgerQuery represents the query to list a product's ledger entries, newest first
type ListProductLedgerQuery struct {
	ProductID uint
	Limit     int
	Offset    int
}

// ListProductLedgerHandler handles list product ledger query
type ListProductLedgerHandler struct {
	reader  catalogdomain.Reader
	entries domain.EntryRepository
}

// NewListProductLedgerHandler creates a new list product ledger handler
func NewListProductLedgerHandler(reader catalogdomain.Reader, entries domain.EntryRepository) *ListProductLedgerHandler {
	return &ListProductLedgerHandler{reader: reader, entries: entries}
}

// Handle executes the list product ledger query
func (h *ListProductLedgerHandler) Handle(ctx context.Context, query ListProductLedgerQuery) ([]domain.InventoryTransaction, error) {
	if query.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required: %w", apperror.ErrInvalidInput)
	}
	query.Limit, query.Offset = page(query.Limit, query.Offset)

	if _, err := h.reader.ProductByID(ctx, query.ProductID); err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	entries, err := h.entries.EntriesByProduct(ctx, query.ProductID, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory transactions: %w", err)
	}
	return entries, nil
}
