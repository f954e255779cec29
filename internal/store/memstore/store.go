// Package memstore is an in-process store.Store. A unit of work runs against a
// private copy of the state under the store lock and replaces the state only
// when it succeeds.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	inventorydomain "github.com/tair/station-pos/internal/inventory/domain"
	promotiondomain "github.com/tair/station-pos/internal/promotion/domain"
	"github.com/tair/station-pos/internal/store"
	txdomain "github.com/tair/station-pos/internal/transaction/domain"
)

type state struct {
	categories   map[uint]catalogdomain.Category
	products     map[uint]catalogdomain.Product
	games        map[uint]catalogdomain.LotteryGame
	promotions   map[uint]promotiondomain.Promotion
	transactions map[uint]txdomain.Transaction
	numbers      map[string]uint
	entries      []inventorydomain.InventoryTransaction
	nextID       uint
}

func newState() *state {
	return &state{
		categories:   map[uint]catalogdomain.Category{},
		products:     map[uint]catalogdomain.Product{},
		games:        map[uint]catalogdomain.LotteryGame{},
		promotions:   map[uint]promotiondomain.Promotion{},
		transactions: map[uint]txdomain.Transaction{},
		numbers:      map[string]uint{},
	}
}

func (s *state) clone() *state {
	c := &state{
		categories:   make(map[uint]catalogdomain.Category, len(s.categories)),
		products:     make(map[uint]catalogdomain.Product, len(s.products)),
		games:        make(map[uint]catalogdomain.LotteryGame, len(s.games)),
		promotions:   make(map[uint]promotiondomain.Promotion, len(s.promotions)),
		transactions: make(map[uint]txdomain.Transaction, len(s.transactions)),
		numbers:      make(map[string]uint, len(s.numbers)),
		entries:      make([]inventorydomain.InventoryTransaction, len(s.entries)),
		nextID:       s.nextID,
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.games {
		c.games[k] = v
	}
	for k, v := range s.promotions {
		c.promotions[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = copyTransaction(v)
	}
	for k, v := range s.numbers {
		c.numbers[k] = v
	}
	copy(c.entries, s.entries)
	return c
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

// Store is the in-memory store
type Store struct {
	mu    sync.Mutex
	state *state
	clock func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{state: newState(), clock: time.Now}
}

// SetClock overrides the time source used for created_at stamps
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// repos runs repository calls against st. Callers hold the store lock.
type repos struct {
	st    *state
	clock func() time.Time
}

// view must be called with s.mu held.
func (s *Store) view() *repos {
	return &repos{st: s.state, clock: s.clock}
}

// WithinTx runs fn against a private copy of the state and commits it on success.
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&repos{st: work, clock: s.clock}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Ping always succeeds
func (s *Store) Ping(context.Context) error {
	return nil
}

// SeedCategory inserts a category and assigns its id when zero
func (s *Store) SeedCategory(c *catalogdomain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.state.id()
	}
	s.state.categories[c.ID] = *c
}

// SeedProduct inserts a product and assigns its id when zero
func (s *Store) SeedProduct(p *catalogdomain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.state.id()
	}
	s.state.products[p.ID] = *p
}

// SeedLotteryGame inserts a lottery game and assigns its id when zero
func (s *Store) SeedLotteryGame(g *catalogdomain.LotteryGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == 0 {
		g.ID = s.state.id()
	}
	s.state.games[g.ID] = *g
}

// SeedPromotion inserts a promotion and assigns its id when zero
func (s *Store) SeedPromotion(p *promotiondomain.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.state.id()
	}
	s.state.promotions[p.ID] = *p
}

// SetProductPrice changes a product's price in place
func (s *Store) SetProductPrice(id uint, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.state.products[id]; ok {
		p.Price = price
		s.state.products[id] = p
	}
}
