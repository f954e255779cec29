// Package promotion selects the single promotion applied to a sale.
package promotion

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/internal/promotion/domain"
)

// Request describes the sale being evaluated.
type Request struct {
	// Amount is the subtotal checked against a minimum purchase.
	Amount decimal.Decimal
	At     time.Time
	// Lines are the discountable lines. Restricted promotions are computed
	// on the covered lines only.
	Lines []domain.Line
	// PromotionID, when set, restricts evaluation to the caller's choice.
	PromotionID *uint
}

// Result is the chosen promotion, if any, and its discount.
type Result struct {
	Discount  decimal.Decimal
	Promotion *domain.Promotion
}

// Evaluator applies at most one promotion per sale. Without a caller choice it
// picks the eligible promotion with the largest discount, lowest id on ties.
type Evaluator struct {
	autoApply bool
}

// NewEvaluator creates a new promotion evaluator
func NewEvaluator(autoApply bool) *Evaluator {
	return &Evaluator{autoApply: autoApply}
}

// Evaluate returns the discount for the request. An unknown caller-selected
// promotion fails with apperror.ErrNotFound.
func (e *Evaluator) Evaluate(ctx context.Context, repo domain.Repository, req Request) (Result, error) {
	none := Result{Discount: decimal.Zero}

	if req.PromotionID != nil {
		p, err := repo.PromotionByID(ctx, *req.PromotionID)
		if err != nil {
			return none, fmt.Errorf("failed to load promotion %d: %w", *req.PromotionID, err)
		}
		discount := discountFor(p, req)
		if discount.IsZero() {
			return none, nil
		}
		return Result{Discount: discount, Promotion: p}, nil
	}

	if !e.autoApply {
		return none, nil
	}

	candidates, err := repo.ActivePromotions(ctx)
	if err != nil {
		return none, fmt.Errorf("failed to load active promotions: %w", err)
	}

	best := none
	for i := range candidates {
		p := &candidates[i]
		if !p.IsEffective(req.At) {
			continue
		}
		discount := discountFor(p, req)
		if discount.IsZero() {
			continue
		}
		if best.Promotion == nil ||
			discount.GreaterThan(best.Discount) ||
			(discount.Equal(best.Discount) && p.ID < best.Promotion.ID) {
			best = Result{Discount: discount, Promotion: p}
		}
	}

	return best, nil
}

func discountFor(p *domain.Promotion, req Request) decimal.Decimal {
	return p.DiscountOn(req.Amount, p.EligibleAmount(req.Lines), req.At)
}
