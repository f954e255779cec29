//go:build wireinject
// +build wireinject

package transaction

import (
	"github.com/google/wire"

	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/internal/store"
	httpDelivery "github.com/tair/station-pos/internal/transaction/delivery/http"
	"github.com/tair/station-pos/internal/transaction/usecase/command"
	"github.com/tair/station-pos/pkg/middleware"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	s store.Store,
	numbers command.NumberGenerator,
	publisher command.EventPublisher,
	auth *middleware.Authenticator,
	opts command.SettlementOptions,
) (*httpDelivery.TransactionHandler, error) {
	wire.Build(
		ledger.New,
		CommandSet,
		QuerySet,
		httpDelivery.NewTransactionHandler,
	)
	return nil, nil
}
