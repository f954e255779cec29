package gormstore

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/catalog/domain"
)

// shiftStock applies current_stock += delta to one row, guarded by cond. The
// guard is part of the UPDATE itself, so the check and the write are one
// atomic statement; rows affected tells whether the guard held.
func (s *Store) shiftStock(ctx context.Context, model interface{}, id uint, delta int, cond string, condArgs ...interface{}) (bool, error) {
	q := s.db.WithContext(ctx).Model(model).Where("id = ?", id)
	if cond != "" {
		q = q.Where(cond, condArgs...)
	}
	res := q.UpdateColumn("current_stock", gorm.Expr("current_stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) rejectOrMissing(ctx context.Context, model interface{}, id uint, what string, rejection error) error {
	found, err := s.exists(ctx, model, id)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", what, err)
	}
	if !found {
		return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, rejection)
}

func (s *Store) DecrementProductStock(ctx context.Context, productID uint, qty int) (product *domain.Product, err error) {
	ctx, span := startSpan(ctx, "repository.DecrementProductStock",
		attribute.Int("product.id", int(productID)),
		attribute.Int("stock.quantity", qty),
	)
	defer func() { endSpan(span, err) }()

	ok, err := s.shiftStock(ctx, &domain.Product{}, productID, -qty, "current_stock >= ?", qty)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement product stock: %w", err)
	}
	if !ok {
		return nil, s.rejectOrMissing(ctx, &domain.Product{}, productID, fmt.Sprintf("product %d", productID), apperror.ErrInsufficientStock)
	}
	return s.ProductByID(ctx, productID)
}

func (s *Store) IncrementProductStock(ctx context.Context, productID uint, qty int) (product *domain.Product, err error) {
	ctx, span := startSpan(ctx, "repository.IncrementProductStock",
		attribute.Int("product.id", int(productID)),
		attribute.Int("stock.quantity", qty),
	)
	defer func() { endSpan(span, err) }()

	ok, err := s.shiftStock(ctx, &domain.Product{}, productID, qty, "")
	if err != nil {
		return nil, fmt.Errorf("failed to increment product stock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, apperror.ErrNotFound)
	}
	return s.ProductByID(ctx, productID)
}

func (s *Store) AdjustProductStock(ctx context.Context, productID uint, delta int) (product *domain.Product, err error) {
	ctx, span := startSpan(ctx, "repository.AdjustProductStock",
		attribute.Int("product.id", int(productID)),
		attribute.Int("stock.delta", delta),
	)
	defer func() { endSpan(span, err) }()

	ok, err := s.shiftStock(ctx, &domain.Product{}, productID, delta, "current_stock + ? >= 0", delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust product stock: %w", err)
	}
	if !ok {
		return nil, s.rejectOrMissing(ctx, &domain.Product{}, productID, fmt.Sprintf("product %d", productID), apperror.ErrInvalidAdjustment)
	}
	return s.ProductByID(ctx, productID)
}

func (s *Store) DecrementLotteryStock(ctx context.Context, gameID uint, qty int) (game *domain.LotteryGame, err error) {
	ctx, span := startSpan(ctx, "repository.DecrementLotteryStock",
		attribute.Int("lottery.game_id", int(gameID)),
		attribute.Int("stock.quantity", qty),
	)
	defer func() { endSpan(span, err) }()

	ok, err := s.shiftStock(ctx, &domain.LotteryGame{}, gameID, -qty, "current_stock >= ?", qty)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement lottery stock: %w", err)
	}
	if !ok {
		return nil, s.rejectOrMissing(ctx, &domain.LotteryGame{}, gameID, fmt.Sprintf("lottery game %d", gameID), apperror.ErrInsufficientStock)
	}
	return s.LotteryGameByID(ctx, gameID)
}

func (s *Store) IncrementLotteryStock(ctx context.Context, gameID uint, qty int) (game *domain.LotteryGame, err error) {
	ctx, span := startSpan(ctx, "repository.IncrementLotteryStock",
		attribute.Int("lottery.game_id", int(gameID)),
		attribute.Int("stock.quantity", qty),
	)
	defer func() { endSpan(span, err) }()

	ok, err := s.shiftStock(ctx, &domain.LotteryGame{}, gameID, qty, "")
	if err != nil {
		return nil, fmt.Errorf("failed to increment lottery stock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("lottery game %d: %w", gameID, apperror.ErrNotFound)
	}
	return s.LotteryGameByID(ctx, gameID)
}
