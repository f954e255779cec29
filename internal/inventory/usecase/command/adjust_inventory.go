package command

import (
	"context"
	"fmt"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/inventory/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/metrics"
)

// AdjustInventoryCommand represents the command to correct a product's stock
type AdjustInventoryCommand struct {
	ProductID uint
	Delta     int
	// Reason is ADJUSTMENT or WASTE.
	Reason domain.EntryType
	UserID uint
	Notes  string
}

// AdjustInventoryHandler handles adjust inventory command
type AdjustInventoryHandler struct {
	ledger    *ledger.Ledger
	publisher LowStockPublisher
}

// NewAdjustInventoryHandler creates a new adjust inventory handler
func NewAdjustInventoryHandler(l *ledger.Ledger, publisher LowStockPublisher) *AdjustInventoryHandler {
	return &AdjustInventoryHandler{ledger: l, publisher: publisher}
}

// Handle executes the adjust inventory command
func (h *AdjustInventoryHandler) Handle(ctx context.Context, cmd AdjustInventoryCommand) (*ledger.Result, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required: %w", apperror.ErrInvalidInput)
	}
	if cmd.Reason == "" {
		cmd.Reason = domain.EntryAdjustment
	}

	res, err := h.ledger.Adjust(ctx, ledger.AdjustRequest{
		ProductID: cmd.ProductID,
		Delta:     cmd.Delta,
		Reason:    cmd.Reason,
		UserID:    cmd.UserID,
		Notes:     cmd.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to adjust inventory: %w", err)
	}

	metrics.ObserveLedgerEntry(string(cmd.Reason))
	logger.Info(ctx).
		Uint("product_id", cmd.ProductID).
		Int("delta", cmd.Delta).
		Str("reason", string(cmd.Reason)).
		Int("stock", res.Product.CurrentStock).
		Msg("Inventory adjusted")

	notifyLowStock(ctx, h.publisher, res)
	return res, nil
}
