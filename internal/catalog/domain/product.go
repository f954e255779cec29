package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a stocked, priced catalog item
type Product struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"size:255;not null"`
	Barcode           *string         `json:"barcode,omitempty" gorm:"size:64;uniqueIndex"`
	Cost              decimal.Decimal `json:"cost" gorm:"type:numeric(10,2);not null"`
	Price             decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	CurrentStock      int             `json:"current_stock" gorm:"not null;default:0"`
	ReorderThreshold  int             `json:"reorder_threshold" gorm:"not null;default:0"`
	FoodStampEligible bool            `json:"food_stamp_eligible" gorm:"not null"`
	Active            bool            `json:"active" gorm:"not null"`
	CategoryID        uint            `json:"category_id" gorm:"not null;index"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether stock has reached the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.ReorderThreshold
}

// Margin is price minus cost.
func (p *Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// MarginPercentage is the margin as a percentage of price, 0 when price is 0.
func (p *Product) MarginPercentage() decimal.Decimal {
	if p.Price.IsZero() {
		return decimal.Zero
	}
	return p.Margin().Div(p.Price).Mul(decimal.NewFromInt(100)).Round(2)
}
