package command

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/catalog"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/internal/promotion"
	promotiondomain "github.com/tair/station-pos/internal/promotion/domain"
	"github.com/tair/station-pos/internal/store"
	"github.com/tair/station-pos/internal/tax"
	"github.com/tair/station-pos/internal/transaction/domain"
	"github.com/tair/station-pos/kafka"
	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/metrics"
	"github.com/tair/station-pos/pkg/money"
)

var tracer = otel.Tracer("pos-settlement")

// EventPublisher receives the events emitted after a commit
type EventPublisher interface {
	PublishTransactionSettled(ctx context.Context, event kafka.TransactionSettledEvent) error
	PublishTransactionVoided(ctx context.Context, event kafka.TransactionVoidedEvent) error
	PublishLowStock(ctx context.Context, event kafka.LowStockEvent) error
}

// NumberGenerator issues transaction numbers
type NumberGenerator interface {
	Next(ctx context.Context) string
}

// SettlementOptions tunes the settlement engine
type SettlementOptions struct {
	// MaxNumberAttempts bounds retries after a generated number collides.
	MaxNumberAttempts   int
	AutoApplyPromotions bool
}

// DefaultSettlementOptions retries a colliding number twice and applies the
// best promotion automatically.
func DefaultSettlementOptions() SettlementOptions {
	return SettlementOptions{MaxNumberAttempts: 3, AutoApplyPromotions: true}
}

// SettleItem is one scanned line. Exactly one of ProductID and LotteryGameID is set.
type SettleItem struct {
	ProductID     *uint
	LotteryGameID *uint
	Quantity      int
}

// SettleTransactionCommand represents the command to settle a sale
type SettleTransactionCommand struct {
	Items         []SettleItem
	PaymentMethod domain.PaymentMethod
	CashierID     uint
	PromotionID   *uint
	// TransactionNumber is generated when empty.
	TransactionNumber string
	// At defaults to the handler clock.
	At time.Time
}

// SettleTransactionHandler handles settle transaction command
type SettleTransactionHandler struct {
	store     store.Store
	ledger    *ledger.Ledger
	evaluator *promotion.Evaluator
	numbers   NumberGenerator
	publisher EventPublisher
	options   SettlementOptions
	clock     func() time.Time
}

// NewSettleTransactionHandler creates a new settle transaction handler
func NewSettleTransactionHandler(s store.Store, l *ledger.Ledger, numbers NumberGenerator, publisher EventPublisher, opts SettlementOptions) *SettleTransactionHandler {
	if opts.MaxNumberAttempts < 1 {
		opts.MaxNumberAttempts = 1
	}
	return &SettleTransactionHandler{
		store:     s,
		ledger:    l,
		evaluator: promotion.NewEvaluator(opts.AutoApplyPromotions),
		numbers:   numbers,
		publisher: publisher,
		options:   opts,
		clock:     time.Now,
	}
}

// WithClock overrides the time source used when a command carries no timestamp
func (h *SettleTransactionHandler) WithClock(clock func() time.Time) *SettleTransactionHandler {
	h.clock = clock
	return h
}

// Handle executes the settle transaction command. Stock, ledger entries and the
// transaction row are committed together or not at all.
func (h *SettleTransactionHandler) Handle(ctx context.Context, cmd SettleTransactionCommand) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "SettleTransaction",
		trace.WithAttributes(
			attribute.Int("transaction.items", len(cmd.Items)),
			attribute.Int64("transaction.cashier_id", int64(cmd.CashierID)),
			attribute.String("transaction.payment_method", string(cmd.PaymentMethod)),
		),
	)
	defer span.End()
	start := time.Now()

	if err := validateSettlement(cmd); err != nil {
		metrics.ObserveSettlement(err, time.Since(start).Seconds())
		span.SetStatus(codes.Error, "invalid settlement")
		return nil, err
	}
	if cmd.At.IsZero() {
		cmd.At = h.clock()
	}
	cmd.At = cmd.At.UTC()

	attempts := 1
	generated := cmd.TransactionNumber == ""
	if generated {
		attempts = h.options.MaxNumberAttempts
	}

	var (
		outcome *settlement
		err     error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		number := cmd.TransactionNumber
		if generated {
			number = h.numbers.Next(ctx)
		}

		outcome, err = h.settleWithin(ctx, cmd, number)
		if err == nil || !apperror.IsRetryable(err) {
			break
		}
		metrics.ObserveNumberCollision()
		if generated && attempt < attempts {
			logger.Warn(ctx).
				Str("transaction_number", number).
				Int("attempt", attempt).
				Msg("Transaction number collision, retrying")
		}
	}

	metrics.ObserveSettlement(err, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "settlement failed")
		logger.Warn(ctx).
			Err(err).
			Uint("cashier_id", cmd.CashierID).
			Str("outcome", metrics.Outcome(err)).
			Msg("Settlement rejected")
		return nil, fmt.Errorf("failed to settle transaction: %w", err)
	}

	txn := outcome.txn
	span.SetAttributes(
		attribute.Int64("transaction.id", int64(txn.ID)),
		attribute.String("transaction.number", txn.TransactionNumber),
		attribute.String("transaction.total", txn.TotalAmount.StringFixed(2)),
	)
	metrics.AddSale(string(txn.PaymentMethod), txn.TotalAmount.InexactFloat64())
	for range outcome.entries {
		metrics.ObserveLedgerEntry("SALE")
	}

	logger.Info(ctx).
		Uint("transaction_id", txn.ID).
		Str("transaction_number", txn.TransactionNumber).
		Str("total", txn.TotalAmount.StringFixed(2)).
		Int("items", len(txn.Items)).
		Msg("Transaction settled")

	h.publishSettled(ctx, txn, outcome.lowStock)
	return txn, nil
}

type settlement struct {
	txn      *domain.Transaction
	entries  []*ledger.Result
	lowStock []*catalogdomain.Product
}

func (h *SettleTransactionHandler) settleWithin(ctx context.Context, cmd SettleTransactionCommand, number string) (*settlement, error) {
	var out *settlement

	err := h.store.WithinTx(ctx, func(tx store.Repositories) error {
		var productIDs, gameIDs []uint
		for _, item := range cmd.Items {
			if item.ProductID != nil {
				productIDs = append(productIDs, *item.ProductID)
			} else {
				gameIDs = append(gameIDs, *item.LotteryGameID)
			}
		}

		snap, err := catalog.LoadSnapshot(ctx, tx, productIDs, gameIDs)
		if err != nil {
			return err
		}

		txn := &domain.Transaction{
			TransactionNumber: number,
			PaymentMethod:     cmd.PaymentMethod,
			Status:            domain.StatusPending,
			TransactionDate:   cmd.At,
			CashierID:         cmd.CashierID,
			Items:             make([]domain.TransactionItem, 0, len(cmd.Items)),
		}
		if err := priceLines(txn, cmd.Items, snap); err != nil {
			return err
		}
		if err := h.applyPromotion(ctx, tx, txn, snap, cmd); err != nil {
			return err
		}
		if err := txn.Finalize(); err != nil {
			return err
		}

		bound := h.ledger.Bind(tx)
		result := &settlement{txn: txn}
		low := map[uint]int{}
		for _, line := range txn.Items {
			if line.ProductID != nil {
				res, err := bound.ReserveAndDecrement(ctx, *line.ProductID, line.Quantity, cmd.CashierID, number)
				if err != nil {
					return fmt.Errorf("line %d: %w", line.LineNumber, err)
				}
				result.entries = append(result.entries, res)
				if res.LowStock {
					if i, seen := low[res.Product.ID]; seen {
						result.lowStock[i] = res.Product
					} else {
						low[res.Product.ID] = len(result.lowStock)
						result.lowStock = append(result.lowStock, res.Product)
					}
				}
				continue
			}
			if _, err := bound.SellLotteryTickets(ctx, *line.LotteryGameID, line.Quantity); err != nil {
				return fmt.Errorf("line %d: %w", line.LineNumber, err)
			}
		}

		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		out = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// priceLines snapshots prices and computes line totals and tax. Lottery lines are untaxed.
func priceLines(txn *domain.Transaction, items []SettleItem, snap *catalog.Snapshot) error {
	for i, item := range items {
		line := domain.TransactionItem{
			LineNumber:     i + 1,
			Quantity:       item.Quantity,
			TaxAmount:      decimal.Zero,
			DiscountAmount: decimal.Zero,
		}

		if item.ProductID != nil {
			p := snap.Products[*item.ProductID]
			if !p.Active {
				return fmt.Errorf("product %d is inactive: %w", p.ID, apperror.ErrInvalidInput)
			}
			if p.Price.IsNegative() {
				return fmt.Errorf("product %d has a negative price: %w", p.ID, apperror.ErrInvalidInput)
			}
			id := p.ID
			line.ProductID = &id
			line.Description = p.Name
			line.UnitPrice = p.Price
			line.TotalPrice = money.Round(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			line.TaxAmount = tax.ItemTax(line.TotalPrice, snap.TaxRate(p))
		} else {
			g := snap.LotteryGames[*item.LotteryGameID]
			if !g.Active {
				return fmt.Errorf("lottery game %d is inactive: %w", g.ID, apperror.ErrInvalidInput)
			}
			if g.TicketPrice.IsNegative() {
				return fmt.Errorf("lottery game %d has a negative ticket price: %w", g.ID, apperror.ErrInvalidInput)
			}
			id := g.ID
			line.LotteryGameID = &id
			line.Description = g.Name
			line.UnitPrice = g.TicketPrice
			line.TotalPrice = money.Round(g.TicketPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		txn.Items = append(txn.Items, line)
	}
	return nil
}

// applyPromotion evaluates at most one promotion against the product lines and
// spreads its discount over the lines it covers.
func (h *SettleTransactionHandler) applyPromotion(ctx context.Context, tx store.Repositories, txn *domain.Transaction, snap *catalog.Snapshot, cmd SettleTransactionCommand) error {
	var (
		lines  []promotiondomain.Line
		amount = decimal.Zero
	)
	for _, line := range txn.Items {
		if line.ProductID == nil {
			continue
		}
		p := snap.Products[*line.ProductID]
		lines = append(lines, promotiondomain.Line{ProductID: p.ID, CategoryID: p.CategoryID, Total: line.TotalPrice})
		amount = amount.Add(line.TotalPrice)
	}
	if len(lines) == 0 && cmd.PromotionID == nil {
		return nil
	}

	res, err := h.evaluator.Evaluate(ctx, tx, promotion.Request{
		Amount:      amount,
		At:          cmd.At,
		Lines:       lines,
		PromotionID: cmd.PromotionID,
	})
	if err != nil {
		return err
	}
	if res.Promotion == nil {
		return nil
	}

	totals := make([]decimal.Decimal, len(txn.Items))
	eligible := make([]bool, len(txn.Items))
	for i, line := range txn.Items {
		totals[i] = line.TotalPrice
		if line.ProductID != nil {
			p := snap.Products[*line.ProductID]
			eligible[i] = res.Promotion.CoversLine(p.ID, p.CategoryID)
		}
	}

	promotionID := res.Promotion.ID
	shares := domain.AllocateDiscount(res.Discount, totals, eligible)
	for i := range txn.Items {
		if shares[i].IsPositive() {
			txn.Items[i].DiscountAmount = shares[i]
			txn.Items[i].PromotionID = &promotionID
		}
	}
	txn.PromotionID = &promotionID
	return nil
}

func (h *SettleTransactionHandler) publishSettled(ctx context.Context, txn *domain.Transaction, lowStock []*catalogdomain.Product) {
	if h.publisher == nil {
		return
	}

	event := kafka.TransactionSettledEvent{
		TransactionID:     txn.ID,
		TransactionNumber: txn.TransactionNumber,
		CashierID:         txn.CashierID,
		PaymentMethod:     string(txn.PaymentMethod),
		ItemCount:         len(txn.Items),
		Subtotal:          txn.Subtotal,
		TaxAmount:         txn.TaxAmount,
		DiscountAmount:    txn.DiscountAmount,
		TotalAmount:       txn.TotalAmount,
		PromotionID:       txn.PromotionID,
	}
	if err := h.publisher.PublishTransactionSettled(ctx, event); err != nil {
		logger.Error(ctx).Err(err).Str("transaction_number", txn.TransactionNumber).Msg("Failed to publish settled event")
	}

	for _, p := range lowStock {
		publishLowStock(ctx, h.publisher, p)
	}
}

func publishLowStock(ctx context.Context, publisher EventPublisher, p *catalogdomain.Product) {
	metrics.ObserveLowStock()
	if publisher == nil {
		return
	}
	err := publisher.PublishLowStock(ctx, kafka.LowStockEvent{
		ProductID:        p.ID,
		ProductName:      p.Name,
		CurrentStock:     p.CurrentStock,
		ReorderThreshold: p.ReorderThreshold,
	})
	if err != nil {
		logger.Error(ctx).Err(err).Uint("product_id", p.ID).Msg("Failed to publish low stock event")
	}
}

func validateSettlement(cmd SettleTransactionCommand) error {
	if len(cmd.Items) == 0 {
		return fmt.Errorf("at least one item is required: %w", apperror.ErrInvalidInput)
	}
	if !cmd.PaymentMethod.Valid() {
		return fmt.Errorf("invalid payment method %q: %w", cmd.PaymentMethod, apperror.ErrInvalidInput)
	}
	if cmd.CashierID == 0 {
		return fmt.Errorf("cashier_id is required: %w", apperror.ErrInvalidInput)
	}
	if len(cmd.TransactionNumber) > domain.MaxTransactionNumberLength {
		return fmt.Errorf("transaction_number must be at most %d bytes: %w", domain.MaxTransactionNumberLength, apperror.ErrInvalidInput)
	}
	for i, item := range cmd.Items {
		if item.Quantity < 1 || item.Quantity > ledger.MaxQuantity {
			return fmt.Errorf("line %d: quantity must be between 1 and %d: %w", i+1, ledger.MaxQuantity, apperror.ErrInvalidInput)
		}
		if (item.ProductID == nil) == (item.LotteryGameID == nil) {
			return fmt.Errorf("line %d: exactly one of product_id and lottery_game_id is required: %w", i+1, apperror.ErrInvalidInput)
		}
	}
	return nil
}
