package query

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/transaction/domain"
)

// ListTransactionsQuery represents the query to list transactions, newest first
type ListTransactionsQuery struct {
	CashierID *uint
	Status    domain.Status
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// ListTransactionsHandler handles list transactions query
type ListTransactionsHandler struct {
	repo domain.Repository
}

// NewListTransactionsHandler creates a new list transactions handler
func NewListTransactionsHandler(repo domain.Repository) *ListTransactionsHandler {
	return &ListTransactionsHandler{repo: repo}
}

// Handle executes the list transactions query
func (h *ListTransactionsHandler) Handle(ctx context.Context, query ListTransactionsQuery) ([]domain.Transaction, error) {
	query.Limit = clampLimit(query.Limit)
	if query.Offset < 0 {
		query.Offset = 0
	}

	switch query.Status {
	case "", domain.StatusPending, domain.StatusCompleted, domain.StatusCancelled:
	default:
		return nil, fmt.Errorf("invalid status %q: %w", query.Status, apperror.ErrInvalidInput)
	}
	if query.From != nil && query.To != nil && !query.From.Before(*query.To) {
		return nil, fmt.Errorf("from must be before to: %w", apperror.ErrInvalidInput)
	}

	txns, err := h.repo.ListTransactions(ctx, domain.ListFilter{
		CashierID: query.CashierID,
		Status:    query.Status,
		From:      query.From,
		To:        query.To,
		Limit:     query.Limit,
		Offset:    query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return txns, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
