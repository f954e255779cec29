package query

import (
	"context"
	"fmt"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/transaction/domain"
)

// GetTransactionQuery represents the query to get a transaction
type GetTransactionQuery struct {
	ID uint
}

// GetTransactionHandler handles get transaction query
type GetTransactionHandler struct {
	repo domain.Repository
}

// NewGetTransactionHandler creates a new get transaction handler
func NewGetTransactionHandler(repo domain.Repository) *GetTransactionHandler {
	return &GetTransactionHandler{repo: repo}
}

// Handle executes the get transaction query
func (h *GetTransactionHandler) Handle(ctx context.Context, query GetTransactionQuery) (*domain.Transaction, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("id is required: %w", apperror.ErrInvalidInput)
	}

	txn, err := h.repo.TransactionByID(ctx, query.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}
