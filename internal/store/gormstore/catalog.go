package gormstore

import (
	"context"
	"fmt"

	"github.com/tair/station-pos/internal/catalog/domain"
)

func (s *Store) ProductByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("product %d", id))
	}
	return &product, nil
}

func (s *Store) ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var product domain.Product
	if err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("product with barcode %q", barcode))
	}
	return &product, nil
}

func (s *Store) ProductsByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Product, error) {
	var products []domain.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]*domain.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (s *Store) CategoriesByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Category, error) {
	var categories []domain.Category
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]*domain.Category, len(categories))
	for i := range categories {
		out[categories[i].ID] = &categories[i]
	}
	return out, nil
}

func (s *Store) LotteryGameByID(ctx context.Context, id uint) (*domain.LotteryGame, error) {
	var game domain.LotteryGame
	if err := s.db.WithContext(ctx).First(&game, id).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("lottery game %d", id))
	}
	return &game, nil
}

func (s *Store) LotteryGameByBarcode(ctx context.Context, barcode string) (*domain.LotteryGame, error) {
	var game domain.LotteryGame
	if err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&game).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("lottery game with barcode %q", barcode))
	}
	return &game, nil
}

func (s *Store) LotteryGamesByIDs(ctx context.Context, ids []uint) (map[uint]*domain.LotteryGame, error) {
	var games []domain.LotteryGame
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&games).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]*domain.LotteryGame, len(games))
	for i := range games {
		out[games[i].ID] = &games[i]
	}
	return out, nil
}

func (s *Store) LowStockProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := s.db.WithContext(ctx).
		Where("active = ? AND current_stock <= reorder_threshold", true).
		Order("current_stock ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	return products, err
}
