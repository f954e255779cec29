package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/inventory/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/kafka"
	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/metrics"
)

// RestockProductCommand represents the command to receive units of a product
type RestockProductCommand struct {
	ProductID uint
	Quantity  int
	UserID    uint
	Reference string
	Notes     string
	// SourceEventID is set for deliveries consumed from Kafka.
	SourceEventID string
}

// RestockProductHandler handles restock product command
type RestockProductHandler struct {
	ledger    *ledger.Ledger
	publisher LowStockPublisher
}

// NewRestockProductHandler creates a new restock product handler
func NewRestockProductHandler(l *ledger.Ledger, publisher LowStockPublisher) *RestockProductHandler {
	return &RestockProductHandler{ledger: l, publisher: publisher}
}

// Handle executes the restock product command
func (h *RestockProductHandler) Handle(ctx context.Context, cmd RestockProductCommand) (*ledger.Result, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required: %w", apperror.ErrInvalidInput)
	}

	res, err := h.ledger.Restock(ctx, ledger.RestockRequest{
		ProductID:     cmd.ProductID,
		Quantity:      cmd.Quantity,
		UserID:        cmd.UserID,
		Reference:     cmd.Reference,
		Notes:         cmd.Notes,
		SourceEventID: cmd.SourceEventID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restock product: %w", err)
	}

	metrics.ObserveLedgerEntry(string(domain.EntryRestock))
	logger.Info(ctx).
		Uint("product_id", cmd.ProductID).
		Int("quantity", cmd.Quantity).
		Int("stock", res.Product.CurrentStock).
		Msg("Product restocked")

	notifyLowStock(ctx, h.publisher, res)
	return res, nil
}

// HandleStockReceived applies a delivery consumed from Kafka. A redelivered
// event is acknowledged without touching stock.
func (h *RestockProductHandler) HandleStockReceived(ctx context.Context, event kafka.StockReceivedEvent) error {
	reference := event.Reference
	if reference == "" {
		reference = event.EventID
	}
	_, err := h.Handle(ctx, RestockProductCommand{
		ProductID:     event.ProductID,
		Quantity:      event.Quantity,
		UserID:        event.UserID,
		Reference:     truncate(reference, domain.MaxReferenceLength),
		Notes:         truncate(event.Notes, domain.MaxNotesLength),
		SourceEventID: event.EventID,
	})
	if errors.Is(err, apperror.ErrDuplicateEvent) {
		logger.Info(ctx).
			Str("event_id", event.EventID).
			Uint("product_id", event.ProductID).
			Msg("Stock delivery already applied")
		return nil
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
