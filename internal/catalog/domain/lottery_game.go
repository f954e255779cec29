package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotteryGame is a scratch-ticket game whose stock is counted in tickets.
type LotteryGame struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"size:255;not null"`
	Barcode      *string         `json:"barcode,omitempty" gorm:"size:64;uniqueIndex"`
	TicketPrice  decimal.Decimal `json:"ticket_price" gorm:"type:numeric(10,2);not null"`
	PackCost     decimal.Decimal `json:"pack_cost" gorm:"type:numeric(10,2);not null"`
	PackCount    int             `json:"pack_count" gorm:"not null"`
	CurrentStock int             `json:"current_stock" gorm:"not null;default:0"`
	Active       bool            `json:"active" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (LotteryGame) TableName() string {
	return "lottery_games"
}

// PackValue is the face value of one full pack.
func (g *LotteryGame) PackValue() decimal.Decimal {
	return g.TicketPrice.Mul(decimal.NewFromInt(int64(g.PackCount)))
}

// PackProfit is the face value of a pack minus what the store paid for it.
func (g *LotteryGame) PackProfit() decimal.Decimal {
	return g.PackValue().Sub(g.PackCost)
}
