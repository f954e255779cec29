package command

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	inventorydomain "github.com/tair/station-pos/internal/inventory/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/internal/store"
	"github.com/tair/station-pos/internal/transaction/domain"
	"github.com/tair/station-pos/kafka"
	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/metrics"
)

const voidRestockNote = "returned by void"

// VoidTransactionCommand represents the command to cancel a completed sale
type VoidTransactionCommand struct {
	TransactionID uint
	UserID        uint
	// Restock returns every line to stock in the same unit of work.
	Restock bool
}

// VoidTransactionHandler handles void transaction command
type VoidTransactionHandler struct {
	store     store.Store
	ledger    *ledger.Ledger
	publisher EventPublisher
	clock     func() time.Time
}

// NewVoidTransactionHandler creates a new void transaction handler
func NewVoidTransactionHandler(s store.Store, l *ledger.Ledger, publisher EventPublisher) *VoidTransactionHandler {
	return &VoidTransactionHandler{store: s, ledger: l, publisher: publisher, clock: time.Now}
}

// WithClock overrides the time source for voided_at
func (h *VoidTransactionHandler) WithClock(clock func() time.Time) *VoidTransactionHandler {
	h.clock = clock
	return h
}

// Handle executes the void transaction command. Only a COMPLETED transaction
// can be voided; a second void fails with apperror.ErrInvalidTransition.
func (h *VoidTransactionHandler) Handle(ctx context.Context, cmd VoidTransactionCommand) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "VoidTransaction",
		trace.WithAttributes(
			attribute.Int64("transaction.id", int64(cmd.TransactionID)),
			attribute.Bool("transaction.restock", cmd.Restock),
		),
	)
	defer span.End()

	if cmd.TransactionID == 0 {
		return nil, fmt.Errorf("transaction_id is required: %w", apperror.ErrInvalidInput)
	}
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user_id is required: %w", apperror.ErrInvalidInput)
	}

	at := h.clock().UTC()
	var (
		txn      *domain.Transaction
		entries  int
		lowStock []*catalogdomain.Product
	)

	err := h.store.WithinTx(ctx, func(tx store.Repositories) error {
		var err error
		txn, err = tx.TransactionByID(ctx, cmd.TransactionID)
		if err != nil {
			return err
		}
		if err := tx.CancelTransaction(ctx, txn.ID, cmd.UserID, at); err != nil {
			return err
		}
		if !cmd.Restock {
			return nil
		}

		bound := h.ledger.Bind(tx)
		for _, line := range txn.Items {
			switch {
			case line.ProductID != nil:
				res, err := bound.Adjust(ctx, ledger.AdjustRequest{
					ProductID: *line.ProductID,
					Delta:     line.Quantity,
					Reason:    inventorydomain.EntryAdjustment,
					UserID:    cmd.UserID,
					Reference: txn.TransactionNumber,
					Notes:     voidRestockNote,
				})
				if err != nil {
					return fmt.Errorf("line %d: %w", line.LineNumber, err)
				}
				entries++
				if res.LowStock {
					lowStock = append(lowStock, res.Product)
				}
			case line.LotteryGameID != nil:
				if _, err := bound.ReturnLotteryTickets(ctx, *line.LotteryGameID, line.Quantity); err != nil {
					return fmt.Errorf("line %d: %w", line.LineNumber, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "void failed")
		logger.Warn(ctx).
			Err(err).
			Uint("transaction_id", cmd.TransactionID).
			Msg("Void rejected")
		return nil, fmt.Errorf("failed to void transaction: %w", err)
	}

	txn.Status = domain.StatusCancelled
	txn.VoidedAt = &at
	txn.VoidedBy = &cmd.UserID
	txn.UpdatedAt = at

	metrics.ObserveVoid(cmd.Restock)
	for i := 0; i < entries; i++ {
		metrics.ObserveLedgerEntry(string(inventorydomain.EntryAdjustment))
	}

	logger.Info(ctx).
		Uint("transaction_id", txn.ID).
		Str("transaction_number", txn.TransactionNumber).
		Uint("voided_by", cmd.UserID).
		Bool("restocked", cmd.Restock).
		Msg("Transaction voided")

	if h.publisher != nil {
		err := h.publisher.PublishTransactionVoided(ctx, kafka.TransactionVoidedEvent{
			TransactionID:     txn.ID,
			TransactionNumber: txn.TransactionNumber,
			VoidedBy:          cmd.UserID,
			Restocked:         cmd.Restock,
			TotalAmount:       txn.TotalAmount,
		})
		if err != nil {
			logger.Error(ctx).Err(err).Str("transaction_number", txn.TransactionNumber).Msg("Failed to publish voided event")
		}
	}
	for _, p := range lowStock {
		publishLowStock(ctx, h.publisher, p)
	}

	return txn, nil
}
