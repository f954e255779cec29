package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/internal/apperror"
)

// MaxTransactionNumberLength is the width of the transaction_number column
const MaxTransactionNumberLength = 32

// PaymentMethod is recorded as a label only
type PaymentMethod string

// Payment methods
const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentEBT        PaymentMethod = "EBT"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentEBT:
		return true
	}
	return false
}

// Status is the transaction lifecycle state. COMPLETED and CANCELLED are terminal.
type Status string

// Transaction statuses
const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Transaction is a settled sale. Amounts are frozen once COMPLETED.
type Transaction struct {
	ID                uint              `json:"id" gorm:"primaryKey"`
	TransactionNumber string            `json:"transaction_number" gorm:"size:32;not null;uniqueIndex"`
	Subtotal          decimal.Decimal   `json:"subtotal" gorm:"type:numeric(10,2);not null"`
	TaxAmount         decimal.Decimal   `json:"tax_amount" gorm:"type:numeric(10,2);not null"`
	DiscountAmount    decimal.Decimal   `json:"discount_amount" gorm:"type:numeric(10,2);not null"`
	TotalAmount       decimal.Decimal   `json:"total_amount" gorm:"type:numeric(10,2);not null"`
	PaymentMethod     PaymentMethod     `json:"payment_method" gorm:"size:20;not null"`
	Status            Status            `json:"status" gorm:"size:20;not null;index"`
	TransactionDate   time.Time         `json:"transaction_date" gorm:"not null;index"`
	CashierID         uint              `json:"cashier_id" gorm:"not null;index"`
	PromotionID       *uint             `json:"promotion_id,omitempty"`
	VoidedAt          *time.Time        `json:"voided_at,omitempty"`
	VoidedBy          *uint             `json:"voided_by,omitempty"`
	Items             []TransactionItem `json:"items" gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TableName specifies the table name
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionItem is one receipt line. Exactly one of ProductID and
// LotteryGameID is set.
type TransactionItem struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	TransactionID  uint            `json:"transaction_id" gorm:"not null;index"`
	LineNumber     int             `json:"line_number" gorm:"not null"`
	ProductID      *uint           `json:"product_id,omitempty" gorm:"index"`
	LotteryGameID  *uint           `json:"lottery_game_id,omitempty" gorm:"index"`
	Description    string          `json:"description" gorm:"size:255"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:numeric(10,2);not null"`
	TotalPrice     decimal.Decimal `json:"total_price" gorm:"type:numeric(10,2);not null"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:numeric(10,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(10,2);not null"`
	FinalPrice     decimal.Decimal `json:"final_price" gorm:"type:numeric(10,2);not null"`
	PromotionID    *uint           `json:"promotion_id,omitempty"`
}

// TableName specifies the table name
func (TransactionItem) TableName() string {
	return "transaction_items"
}

// Finalize freezes the totals from the items and marks the transaction COMPLETED.
func (t *Transaction) Finalize() error {
	if t.Status != "" && t.Status != StatusPending {
		return fmt.Errorf("cannot settle %s transaction: %w", t.Status, apperror.ErrInvalidTransition)
	}

	subtotal, tax, discount := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range t.Items {
		item := &t.Items[i]
		item.FinalPrice = item.TotalPrice.Sub(item.DiscountAmount)
		subtotal = subtotal.Add(item.TotalPrice)
		tax = tax.Add(item.TaxAmount)
		discount = discount.Add(item.DiscountAmount)
	}

	t.Subtotal = subtotal
	t.TaxAmount = tax
	t.DiscountAmount = discount
	t.TotalAmount = subtotal.Add(tax).Sub(discount)
	t.Status = StatusCompleted
	return nil
}

// CanVoid reports whether the transaction may move to CANCELLED.
func (t *Transaction) CanVoid() error {
	if t.Status != StatusCompleted {
		return fmt.Errorf("cannot void %s transaction %s: %w", t.Status, t.TransactionNumber, apperror.ErrInvalidTransition)
	}
	return nil
}

// ListFilter narrows ListTransactions
type ListFilter struct {
	CashierID *uint
	Status    Status
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// SalesSummary aggregates COMPLETED sales in [From, To).
type SalesSummary struct {
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	TransactionCount int64           `json:"transaction_count"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// Repository defines the contract for transaction data access
type Repository interface {
	// CreateTransaction fails with apperror.ErrDuplicateTransactionNumber on a number collision.
	CreateTransaction(ctx context.Context, txn *Transaction) error
	TransactionByID(ctx context.Context, id uint) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, error)
	// CancelTransaction moves a COMPLETED transaction to CANCELLED. It fails with
	// apperror.ErrInvalidTransition for any other current status.
	CancelTransaction(ctx context.Context, id, userID uint, at time.Time) error
	SummarizeSales(ctx context.Context, from, to time.Time) (*SalesSummary, error)
}
