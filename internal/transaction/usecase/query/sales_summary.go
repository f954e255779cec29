package query

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/transaction/domain"
)

// SalesSummaryQuery aggregates COMPLETED sales in [From, To)
type SalesSummaryQuery struct {
	From time.Time
	To   time.Time
}

// SalesSummaryHandler handles sales summary query
type SalesSummaryHandler struct {
	repo domain.Repository
}

// NewSalesSummaryHandler creates a new sales summary handler
func NewSalesSummaryHandler(repo domain.Repository) *SalesSummaryHandler {
	return &SalesSummaryHandler{repo: repo}
}

// Handle executes the sales summary query
func (h *SalesSummaryHandler) Handle(ctx context.Context, query SalesSummaryQuery) (*domain.SalesSummary, error) {
	if query.From.IsZero() || query.To.IsZero() {
		return nil, fmt.Errorf("from and to are required: %w", apperror.ErrInvalidInput)
	}
	if !query.From.Before(query.To) {
		return nil, fmt.Errorf("from must be before to: %w", apperror.ErrInvalidInput)
	}

	summary, err := h.repo.SummarizeSales(ctx, query.From.UTC(), query.To.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}

	return summary, nil
}
