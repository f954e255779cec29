// Package catalog provides the explicit, per-settlement catalog snapshot.
package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/tax"
)

// Snapshot is a consistent read of every catalog row a sale references.
type Snapshot struct {
	Products     map[uint]*domain.Product
	Categories   map[uint]*domain.Category
	LotteryGames map[uint]*domain.LotteryGame
}

// LoadSnapshot fetches the given products, their categories and the given lottery games.
// Any unknown product or game id fails with apperror.ErrNotFound.
func LoadSnapshot(ctx context.Context, reader domain.Reader, productIDs, gameIDs []uint) (*Snapshot, error) {
	snap := &Snapshot{
		Products:     map[uint]*domain.Product{},
		Categories:   map[uint]*domain.Category{},
		LotteryGames: map[uint]*domain.LotteryGame{},
	}

	productIDs = unique(productIDs)
	if len(productIDs) > 0 {
		products, err := reader.ProductsByIDs(ctx, productIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		for _, id := range productIDs {
			if _, ok := products[id]; !ok {
				return nil, fmt.Errorf("product %d: %w", id, apperror.ErrNotFound)
			}
		}
		snap.Products = products

		categoryIDs := make([]uint, 0, len(products))
		for _, p := range products {
			categoryIDs = append(categoryIDs, p.CategoryID)
		}
		categories, err := reader.CategoriesByIDs(ctx, unique(categoryIDs))
		if err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		snap.Categories = categories
	}

	gameIDs = unique(gameIDs)
	if len(gameIDs) > 0 {
		games, err := reader.LotteryGamesByIDs(ctx, gameIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load lottery games: %w", err)
		}
		for _, id := range gameIDs {
			if _, ok := games[id]; !ok {
				return nil, fmt.Errorf("lottery game %d: %w", id, apperror.ErrNotFound)
			}
		}
		snap.LotteryGames = games
	}

	return snap, nil
}

// TaxRate returns the rate of the product's category, or a null rate when the
// category is missing.
func (s *Snapshot) TaxRate(p *domain.Product) decimal.NullDecimal {
	return tax.Rate(s.Categories[p.CategoryID])
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
