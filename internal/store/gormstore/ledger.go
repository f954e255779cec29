package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/inventory/domain"
)

func (s *Store) AppendEntry(ctx context.Context, entry *domain.InventoryTransaction) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		if entry.SourceEventID != nil && isUniqueViolation(err) {
			return fmt.Errorf("event %s: %w", *entry.SourceEventID, apperror.ErrDuplicateEvent)
		}
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (s *Store) EntryBySourceEvent(ctx context.Context, eventID string) (*domain.InventoryTransaction, error) {
	var entry domain.InventoryTransaction
	err := s.db.WithContext(ctx).Where("source_event_id = ?", eventID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("entry for event %s: %w", eventID, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find entry for event %s: %w", eventID, err)
	}
	return &entry, nil
}

func (s *Store) EntriesByProduct(ctx context.Context, productID uint, limit, offset int) ([]domain.InventoryTransaction, error) {
	var entries []domain.InventoryTransaction
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}
