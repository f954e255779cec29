package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/transaction/domain"
)

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

func (s *Store) CreateTransaction(ctx context.Context, txn *domain.Transaction) (err error) {
	ctx, span := startSpan(ctx, "repository.CreateTransaction",
		attribute.String("transaction.number", txn.TransactionNumber),
		attribute.Int("transaction.items", len(txn.Items)),
	)
	defer func() { endSpan(span, err) }()

	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction number %s: %w", txn.TransactionNumber, apperror.ErrDuplicateTransactionNumber)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *Store) TransactionByID(ctx context.Context, id uint) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := s.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&txn, id).Error
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("transaction %d", id))
	}
	return &txn, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.ListFilter) ([]domain.Transaction, error) {
	q := s.db.WithContext(ctx).Preload("Items", orderedItems)
	if filter.CashierID != nil {
		q = q.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("transaction_date < ?", *filter.To)
	}

	var txns []domain.Transaction
	err := q.Order("transaction_date DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&txns).Error
	return txns, err
}

func (s *Store) CancelTransaction(ctx context.Context, id, userID uint, at time.Time) (err error) {
	ctx, span := startSpan(ctx, "repository.CancelTransaction",
		attribute.Int("transaction.id", int(id)),
	)
	defer func() { endSpan(span, err) }()

	res := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.StatusCompleted).
		Updates(map[string]interface{}{
			"status":     domain.StatusCancelled,
			"voided_at":  at,
			"voided_by":  userID,
			"updated_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to cancel transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.rejectOrMissing(ctx, &domain.Transaction{}, id, fmt.Sprintf("transaction %d", id), apperror.ErrInvalidTransition)
	}
	return nil
}

func (s *Store) SummarizeSales(ctx context.Context, from, to time.Time) (*domain.SalesSummary, error) {
	var row struct {
		Count          int64
		Subtotal       decimal.Decimal
		TaxAmount      decimal.Decimal
		DiscountAmount decimal.Decimal
		TotalAmount    decimal.Decimal
	}

	err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("COUNT(*) AS count, "+
			"COALESCE(SUM(subtotal), 0) AS subtotal, "+
			"COALESCE(SUM(tax_amount), 0) AS tax_amount, "+
			"COALESCE(SUM(discount_amount), 0) AS discount_amount, "+
			"COALESCE(SUM(total_amount), 0) AS total_amount").
		Where("status = ? AND transaction_date >= ? AND transaction_date < ?", domain.StatusCompleted, from, to).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}

	return &domain.SalesSummary{
		From:             from,
		To:               to,
		TransactionCount: row.Count,
		Subtotal:         row.Subtotal,
		TaxAmount:        row.TaxAmount,
		DiscountAmount:   row.DiscountAmount,
		TotalAmount:      row.TotalAmount,
	}, nil
}
