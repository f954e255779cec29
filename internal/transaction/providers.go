package transaction

import (
	"github.com/google/wire"

	"github.com/tair/station-pos/internal/store"
	"github.com/tair/station-pos/internal/transaction/domain"
	"github.com/tair/station-pos/internal/transaction/usecase/command"
	"github.com/tair/station-pos/internal/transaction/usecase/query"
)

// ProvideRepository narrows the store to transaction reads
func ProvideRepository(s store.Store) domain.Repository {
	return s
}

// Wire sets
var CommandSet = wire.NewSet(
	command.NewSettleTransactionHandler,
	command.NewVoidTransactionHandler,
)

var QuerySet = wire.NewSet(
	ProvideRepository,
	query.NewGetTransactionHandler,
	query.NewListTransactionsHandler,
	query.NewSalesSummaryHandler,
)
