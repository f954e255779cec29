package command

import (
	"context"

	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/kafka"
	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/metrics"
)

// LowStockPublisher receives low-stock signals after a stock mutation commits
type LowStockPublisher interface {
	PublishLowStock(ctx context.Context, event kafka.LowStockEvent) error
}

// notifyLowStock emits a low-stock event when the committed mutation left the
// product at or below its reorder threshold.
func notifyLowStock(ctx context.Context, publisher LowStockPublisher, res *ledger.Result) {
	if res == nil || !res.LowStock {
		return
	}
	metrics.ObserveLowStock()
	if publisher == nil {
		return
	}
	err := publisher.PublishLowStock(ctx, kafka.LowStockEvent{
		ProductID:        res.Product.ID,
		ProductName:      res.Product.Name,
		CurrentStock:     res.Product.CurrentStock,
		ReorderThreshold: res.Product.ReorderThreshold,
	})
	if err != nil {
		logger.Error(ctx).Err(err).Uint("product_id", res.Product.ID).Msg("Failed to publish low stock event")
	}
}
