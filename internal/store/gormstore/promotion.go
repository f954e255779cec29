package gormstore

import (
	"context"
	"fmt"

	"github.com/tair/station-pos/internal/promotion/domain"
)

func (s *Store) PromotionByID(ctx context.Context, id uint) (*domain.Promotion, error) {
	var promotion domain.Promotion
	if err := s.db.WithContext(ctx).First(&promotion, id).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("promotion %d", id))
	}
	return &promotion, nil
}

// ActivePromotions returns promotions flagged active. Date-window checks are
// left to the evaluator so that a single clock decides effectiveness.
func (s *Store) ActivePromotions(ctx context.Context) ([]domain.Promotion, error) {
	var promotions []domain.Promotion
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&promotions).Error
	return promotions, err
}
