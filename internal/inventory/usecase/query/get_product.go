package query

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
)

// ProductView is a product with its derived figures
type ProductView struct {
	catalogdomain.Product
	Margin           decimal.Decimal `json:"margin"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
	LowStock         bool            `json:"low_stock"`
}

// NewProductView derives margin and low-stock from a product
func NewProductView(p *catalogdomain.Product) *ProductView {
	return &ProductView{
		Product:          *p,
		Margin:           p.Margin(),
		MarginPercentage: p.MarginPercentage(),
		LowStock:         p.IsLowStock(),
	}
}

// GetProductQuery looks a product up by id or, when ID is zero, by barcode
type GetProductQuery struct {
	ID      uint
	Barcode string
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	reader catalogdomain.Reader
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(reader catalogdomain.Reader) *GetProductHandler {
	return &GetProductHandler{reader: reader}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(ctx context.Context, query GetProductQuery) (*ProductView, error) {
	var (
		p   *catalogdomain.Product
		err error
	)
	switch {
	case query.ID != 0:
		p, err = h.reader.ProductByID(ctx, query.ID)
	case query.Barcode != "":
		p, err = h.reader.ProductByBarcode(ctx, query.Barcode)
	default:
		return nil, fmt.Errorf("id or barcode is required: %w", apperror.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return NewProductView(p), nil
}
