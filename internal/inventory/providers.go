package inventory

import (
	"github.com/google/wire"

	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/internal/inventory/usecase/command"
	"github.com/tair/station-pos/internal/inventory/usecase/query"
	"github.com/tair/station-pos/internal/store"
)

// ProvideCatalogReader narrows the store to catalog reads
func ProvideCatalogReader(s store.Store) catalogdomain.Reader {
	return s
}

// ProvideEntryRepository narrows the store to ledger entries
func ProvideEntryRepository(s store.Store) domain.EntryRepository {
	return s
}

// Wire sets
var StoreSet = wire.NewSet(
	ProvideCatalogReader,
	ProvideEntryRepository,
	ledger.New,
)

var CommandSet = wire.NewSet(
	command.NewRestockProductHandler,
	command.NewAdjustInventoryHandler,
	command.NewSellLotteryTicketsHandler,
	command.NewRestockLotteryPacksHandler,
)

var QuerySet = wire.NewSet(
	query.NewGetProductHandler,
	query.NewListLowStockHandler,
	query.NewListProductLedgerHandler,
	query.NewGetLotteryGameHandler,
)
