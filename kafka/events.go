package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionSettledEvent is emitted after a sale commits
type TransactionSettledEvent struct {
	EventID           string          `json:"event_id"`
	EventType         string          `json:"event_type"`
	TransactionID     uint            `json:"transaction_id"`
	TransactionNumber string          `json:"transaction_number"`
	CashierID         uint            `json:"cashier_id"`
	PaymentMethod     string          `json:"payment_method"`
	ItemCount         int             `json:"item_count"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PromotionID       *uint           `json:"promotion_id,omitempty"`
	Timestamp         time.Time       `json:"timestamp"`
}

// TransactionVoidedEvent is emitted after a sale is cancelled
type TransactionVoidedEvent struct {
	EventID           string          `json:"event_id"`
	EventType         string          `json:"event_type"`
	TransactionID     uint            `json:"transaction_id"`
	TransactionNumber string          `json:"transaction_number"`
	VoidedBy          uint            `json:"voided_by"`
	Restocked         bool            `json:"restocked"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Timestamp         time.Time       `json:"timestamp"`
}

// LowStockEvent signals a product at or below its reorder threshold
type LowStockEvent struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	ProductID        uint      `json:"product_id"`
	ProductName      string    `json:"product_name"`
	CurrentStock     int       `json:"current_stock"`
	ReorderThreshold int       `json:"reorder_threshold"`
	Timestamp        time.Time `json:"timestamp"`
}

// StockReceivedEvent is a delivery reported by the back office
type StockReceivedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UserID    uint      `json:"user_id"`
	Reference string    `json:"reference,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeTransactionSettled = "transaction.settled"
	EventTypeTransactionVoided  = "transaction.voided"
	EventTypeLowStock           = "inventory.low_stock"
	EventTypeStockReceived      = "inventory.stock_received"
)

// Kafka topics
const (
	TopicTransactions  = "pos-transactions"
	TopicLowStock      = "inventory-low-stock"
	TopicStockReceived = "inventory-stock-received"
)
