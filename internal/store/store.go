// Package store defines the unit of work the settlement core runs in.
package store

import (
	"context"

	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	inventorydomain "github.com/tair/station-pos/internal/inventory/domain"
	promotiondomain "github.com/tair/station-pos/internal/promotion/domain"
	txdomain "github.com/tair/station-pos/internal/transaction/domain"
)

// Repositories is every repository reachable inside one unit of work.
type Repositories interface {
	catalogdomain.Reader
	promotiondomain.Repository
	inventorydomain.StockRepository
	inventorydomain.EntryRepository
	txdomain.Repository
}

// Store is the durable record store. Calls made directly on the Store run
// outside any unit of work; WithinTx commits everything fn does, or nothing.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
	Ping(ctx context.Context) error
}
