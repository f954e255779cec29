// Package gormstore implements store.Store on gorm (PostgreSQL in production, SQLite in tests).
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	inventorydomain "github.com/tair/station-pos/internal/inventory/domain"
	promotiondomain "github.com/tair/station-pos/internal/promotion/domain"
	"github.com/tair/station-pos/internal/store"
	txdomain "github.com/tair/station-pos/internal/transaction/domain"
)

// Store is a gorm-backed store.Store
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New creates a new gorm store
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&catalogdomain.LotteryGame{},
		&promotiondomain.Promotion{},
		&txdomain.Transaction{},
		&txdomain.TransactionItem{},
		&inventorydomain.InventoryTransaction{},
	}
}

// AutoMigrate creates or updates the schema from the models
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(Models()...)
}

// WithinTx runs fn in a database transaction
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *Store) exists(ctx context.Context, model interface{}, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
