//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"

	httpDelivery "github.com/tair/station-pos/internal/inventory/delivery/http"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/internal/inventory/usecase/command"
	"github.com/tair/station-pos/internal/store"
	"github.com/tair/station-pos/pkg/middleware"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(s store.Store, publisher command.LowStockPublisher, auth *middleware.Authenticator) (*httpDelivery.InventoryHandler, error) {
	wire.Build(
		StoreSet,
		CommandSet,
		QuerySet,
		httpDelivery.NewInventoryHandler,
	)
	return nil, nil
}

// InitializeStockReceivedHandler initializes the Kafka delivery handler
func InitializeStockReceivedHandler(s store.Store, publisher command.LowStockPublisher) *command.RestockProductHandler {
	wire.Build(
		ledger.New,
		command.NewRestockProductHandler,
	)
	return nil
}
