package domain

import "context"

// Reader defines read access to catalog entities.
// Single-entity lookups return apperror.ErrNotFound for unknown ids; batch lookups
// return only the rows that exist.
type Reader interface {
	ProductByID(ctx context.Context, id uint) (*Product, error)
	ProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	ProductsByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)
	CategoriesByIDs(ctx context.Context, ids []uint) (map[uint]*Category, error)
	LotteryGameByID(ctx context.Context, id uint) (*LotteryGame, error)
	LotteryGameByBarcode(ctx context.Context, barcode string) (*LotteryGame, error)
	LotteryGamesByIDs(ctx context.Context, ids []uint) (map[uint]*LotteryGame, error)
	LowStockProducts(ctx context.Context, limit, offset int) ([]Product, error)
}
