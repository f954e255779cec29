package query

import (
	"context"
	"fmt"

	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
)

// ListLowStockQuery represents the query to list active products at or below threshold
type ListLowStockQuery struct {
	Limit  int
	Offset int
}

// ListLowStockHandler handles list low stock query
type ListLowStockHandler struct {
	reader catalogdomain.Reader
}

// NewListLowStockHandler creates a new list low stock handler
func NewListLowStockHandler(reader catalogdomain.Reader) *ListLowStockHandler {
	return &ListLowStockHandler{reader: reader}
}

// Handle executes the list low stock query
func (h *ListLowStockHandler) Handle(ctx context.Context, query ListLowStockQuery) ([]*ProductView, error) {
	query.Limit, query.Offset = page(query.Limit, query.Offset)

	products, err := h.reader.LowStockProducts(ctx, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}

	views := make([]*ProductView, 0, len(products))
	for i := range products {
		views = append(views, NewProductView(&products[i]))
	}
	return views, nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
