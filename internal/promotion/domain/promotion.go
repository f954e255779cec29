package domain

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/pkg/money"
)

// PromotionType selects how DiscountValue is interpreted
type PromotionType string

// Promotion types
const (
	TypePercentage  PromotionType = "PERCENTAGE"
	TypeFixedAmount PromotionType = "FIXED_AMOUNT"
)

// Promotion is a time-boxed discount rule
type Promotion struct {
	ID                  uint                `json:"id" gorm:"primaryKey"`
	Name                string              `json:"name" gorm:"size:255;not null"`
	Type                PromotionType       `json:"type" gorm:"size:20;not null"`
	DiscountValue       decimal.Decimal     `json:"discount_value" gorm:"type:numeric(10,2);not null"`
	StartDate           time.Time           `json:"start_date" gorm:"not null"`
	EndDate             time.Time           `json:"end_date" gorm:"not null"`
	MinPurchaseAmount   decimal.NullDecimal `json:"min_purchase_amount" gorm:"type:numeric(10,2)"`
	Active              bool                `json:"active" gorm:"not null;index"`
	EligibleProductIDs  []uint              `json:"eligible_product_ids" gorm:"type:text;serializer:json"`
	EligibleCategoryIDs []uint              `json:"eligible_category_ids" gorm:"type:text;serializer:json"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// TableName specifies the table name
func (Promotion) TableName() string {
	return "promotions"
}

// IsEffective reports whether the promotion is active and now lies strictly
// between its start and end dates.
func (p *Promotion) IsEffective(now time.Time) bool {
	return p.Active && now.After(p.StartDate) && now.Before(p.EndDate)
}

// CalculateDiscount returns the discount for a purchase amount at a given time
// when every line of the purchase is eligible.
func (p *Promotion) CalculateDiscount(amount decimal.Decimal, now time.Time) decimal.Decimal {
	return p.DiscountOn(amount, amount, now)
}

// DiscountOn checks the minimum purchase against subtotal and computes the
// discount on eligible, the part of the subtotal the promotion covers. The
// result is rounded to cents and never exceeds eligible.
func (p *Promotion) DiscountOn(subtotal, eligible decimal.Decimal, now time.Time) decimal.Decimal {
	if !p.IsEffective(now) || !eligible.IsPositive() {
		return decimal.Zero
	}
	if p.MinPurchaseAmount.Valid && subtotal.LessThan(p.MinPurchaseAmount.Decimal) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch p.Type {
	case TypePercentage:
		discount = money.Percent(eligible, p.DiscountValue)
	case TypeFixedAmount:
		discount = money.Round(p.DiscountValue)
	default:
		return decimal.Zero
	}
	return money.Clamp(discount, eligible)
}

// Unrestricted reports whether the promotion applies to every line.
func (p *Promotion) Unrestricted() bool {
	return len(p.EligibleProductIDs) == 0 && len(p.EligibleCategoryIDs) == 0
}

// CoversLine reports whether a line for the given product and category is eligible.
func (p *Promotion) CoversLine(productID, categoryID uint) bool {
	if p.Unrestricted() {
		return true
	}
	return slices.Contains(p.EligibleProductIDs, productID) ||
		slices.Contains(p.EligibleCategoryIDs, categoryID)
}

// Line is one priced sale line as seen by a promotion.
type Line struct {
	ProductID  uint
	CategoryID uint
	Total      decimal.Decimal
}

// EligibleAmount sums the totals of the lines the promotion covers.
func (p *Promotion) EligibleAmount(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		if p.CoversLine(l.ProductID, l.CategoryID) {
			sum = sum.Add(l.Total)
		}
	}
	return sum
}

// Repository defines read access to promotions
type Repository interface {
	PromotionByID(ctx context.Context, id uint) (*Promotion, error)
	ActivePromotions(ctx context.Context) ([]Promotion, error)
}
