package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products and carries their tax rate.
// TaxRate is a percentage (8.25 means 8.25%); NULL means untaxed.
type Category struct {
	ID        uint                `json:"id" gorm:"primaryKey"`
	Name      string              `json:"name" gorm:"size:100;not null;uniqueIndex"`
	TaxRate   decimal.NullDecimal `json:"tax_rate" gorm:"type:numeric(5,2)"`
	Active    bool                `json:"active" gorm:"not null"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// TableName specifies the table name
func (Category) TableName() string {
	return "categories"
}
