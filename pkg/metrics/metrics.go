// Package metrics holds the Prometheus collectors of the POS service.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/station-pos/internal/apperror"
)

var (
	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_settlements_total",
			Help: "Total number of settlement attempts by outcome",
		},
		[]string{"outcome"},
	)

	settlementDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_settlement_duration_seconds",
			Help:    "Duration of settlement in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	salesAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_sales_amount_total",
			Help: "Sum of settled transaction totals by payment method",
		},
		[]string{"payment_method"},
	)

	voidsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_voids_total",
			Help: "Total number of voided transactions",
		},
		[]string{"restocked"},
	)

	stockRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_stock_rejections_total",
			Help: "Stock mutations rejected by the conditional update",
		},
		[]string{"resource", "reason"},
	)

	ledgerEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_inventory_ledger_entries_total",
			Help: "Committed inventory ledger entries by type",
		},
		[]string{"type"},
	)

	numberCollisionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_transaction_number_collisions_total",
			Help: "Transaction number collisions detected at persist time",
		},
	)

	lowStockEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_low_stock_signals_total",
			Help: "Low-stock signals raised after stock mutations",
		},
	)
)

func init() {
	prometheus.MustRegister(settlementsTotal)
	prometheus.MustRegister(settlementDuration)
	prometheus.MustRegister(salesAmountTotal)
	prometheus.MustRegister(voidsTotal)
	prometheus.MustRegister(stockRejectionsTotal)
	prometheus.MustRegister(ledgerEntriesTotal)
	prometheus.MustRegister(numberCollisionsTotal)
	prometheus.MustRegister(lowStockEventsTotal)
}

// Outcome turns a settlement error into a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "completed"
	}
	return apperror.Code(err)
}

// ObserveSettlement records one settlement attempt.
func ObserveSettlement(err error, seconds float64) {
	outcome := Outcome(err)
	settlementsTotal.WithLabelValues(outcome).Inc()
	settlementDuration.WithLabelValues(outcome).Observe(seconds)
}

// AddSale adds a settled total to the sales counter.
func AddSale(paymentMethod string, amount float64) {
	salesAmountTotal.WithLabelValues(paymentMethod).Add(amount)
}

// ObserveVoid records a voided transaction.
func ObserveVoid(restocked bool) {
	label := "false"
	if restocked {
		label = "true"
	}
	voidsTotal.WithLabelValues(label).Inc()
}

// ObserveStockRejection counts insufficient-stock and invalid-adjustment rejections.
func ObserveStockRejection(resource string, err error) {
	if errors.Is(err, apperror.ErrInsufficientStock) || errors.Is(err, apperror.ErrInvalidAdjustment) {
		stockRejectionsTotal.WithLabelValues(resource, apperror.Code(err)).Inc()
	}
}

// ObserveLedgerEntry counts a committed ledger entry.
func ObserveLedgerEntry(entryType string) {
	ledgerEntriesTotal.WithLabelValues(entryType).Inc()
}

// ObserveNumberCollision counts a transaction number collision.
func ObserveNumberCollision() {
	numberCollisionsTotal.Inc()
}

// ObserveLowStock counts a low-stock signal.
func ObserveLowStock() {
	lowStockEventsTotal.Inc()
}
