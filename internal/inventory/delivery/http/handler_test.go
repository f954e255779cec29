package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/internal/inventory/usecase/command"
	"github.com/tair/station-pos/internal/inventory/usecase/query"
	"github.com/tair/station-pos/internal/store/memstore"
	"github.com/tair/station-pos/kafka"
	"github.com/tair/station-pos/pkg/auth"
	"github.com/tair/station-pos/pkg/middleware"
)

type fixture struct {
	router  *mux.Router
	product *catalogdomain.Product
	game    *catalogdomain.LotteryGame
	cashier string
	manager string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	barcode := "049000050103"
	product := &catalogdomain.Product{Name: "Cola", Barcode: &barcode, Price: decimal.RequireFromString("1.99"), Cost: decimal.RequireFromString("0.90"), CurrentStock: 4, ReorderThreshold: 5, Active: true}
	s.SeedProduct(product)
	game := &catalogdomain.LotteryGame{Name: "Cash Blast", TicketPrice: decimal.RequireFromString("5.00"), PackCost: decimal.RequireFromString("135.00"), PackCount: 30, CurrentStock: 2, Active: true}
	s.SeedLotteryGame(game)

	l := ledger.New(s)
	tokens := auth.NewManager("test-secret", time.Hour)
	h := NewInventoryHandler(
		command.NewRestockProductHandler(l, kafka.NoopPublisher{}),
		command.NewAdjustInventoryHandler(l, kafka.NoopPublisher{}),
		command.NewSellLotteryTicketsHandler(l),
		command.NewRestockLotteryPacksHandler(l),
		query.NewGetProductHandler(s),
		query.NewListLowStockHandler(s),
		query.NewListProductLedgerHandler(s, s),
		query.NewGetLotteryGameHandler(s),
		middleware.NewAuthenticator(tokens),
	)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	cashier, err := tokens.Generate(1, "cashier", auth.RoleCashier)
	require.NoError(t, err)
	manager, err := tokens.Generate(2, "manager", auth.RoleManager)
	require.NoError(t, err)

	return &fixture{router: router, product: product, game: game, cashier: cashier, manager: manager}
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) (int, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func field(t *testing.T, data interface{}, path ...string) interface{} {
	t.Helper()
	cur := data
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		require.True(t, ok, "expected object at %q", key)
		cur = m[key]
	}
	return cur
}

func TestProductLookups(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/inventory/products/%d", f.product.ID), f.cashier, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "Cola", field(t, resp.Data, "name"))
	assert.Equal(t, true, field(t, resp.Data, "low_stock"))

	code, resp = f.do(t, http.MethodGet, "/api/inventory/products/barcode/049000050103", f.cashier, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, float64(f.product.ID), field(t, resp.Data, "id"))

	code, resp = f.do(t, http.MethodGet, "/api/inventory/products/barcode/000", f.cashier, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Code)

	code, resp = f.do(t, http.MethodGet, "/api/inventory/products/low-stock", f.cashier, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Len(t, resp.Data, 1)
}

func TestRestockAndAdjust(t *testing.T) {
	f := newFixture(t)
	base := fmt.Sprintf("/api/inventory/products/%d", f.product.ID)

	code, _ := f.do(t, http.MethodPost, base+"/restock", f.cashier, restockRequest{Quantity: 6})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := f.do(t, http.MethodPost, base+"/restock", f.manager, restockRequest{Quantity: 6, Reference: "PO-1"})
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, float64(10), field(t, resp.Data, "product", "current_stock"))

	code, resp = f.do(t, http.MethodPost, base+"/adjust", f.manager, adjustRequest{Delta: -11})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_ADJUSTMENT", resp.Code)

	code, resp = f.do(t, http.MethodPost, base+"/adjust", f.manager, adjustRequest{Delta: -2, Reason: "WASTE", Notes: "dented"})
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, float64(8), field(t, resp.Data, "product", "current_stock"))

	code, resp = f.do(t, http.MethodPost, base+"/restock", f.manager, restockRequest{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", resp.Code)

	code, resp = f.do(t, http.MethodGet, base+"/transactions", f.manager, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	entries, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, "WASTE", field(t, entries[0], "type"))
	assert.Equal(t, "RESTOCK", field(t, entries[1], "type"))
}

func TestLotteryRoutes(t *testing.T) {
	f := newFixture(t)
	base := fmt.Sprintf("/api/lottery/%d", f.game.ID)

	code, resp := f.do(t, http.MethodPost, base+"/sell/3", f.cashier, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Code)

	code, resp = f.do(t, http.MethodPost, base+"/sell/2", f.cashier, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, float64(0), field(t, resp.Data, "current_stock"))

	code, resp = f.do(t, http.MethodPost, base+"/restock", f.manager, restockPacksRequest{Packs: 1})
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, float64(30), field(t, resp.Data, "current_stock"))

	code, resp = f.do(t, http.MethodGet, base, f.cashier, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	packValue, ok := field(t, resp.Data, "pack_value").(string)
	require.True(t, ok)
	assert.Equal(t, "150.00", decimal.RequireFromString(packValue).StringFixed(2))
}
