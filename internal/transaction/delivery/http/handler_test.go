package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/internal/store/memstore"
	"github.com/tair/station-pos/internal/transaction/domain"
	"github.com/tair/station-pos/internal/transaction/numbering"
	"github.com/tair/station-pos/internal/transaction/usecase/command"
	"github.com/tair/station-pos/internal/transaction/usecase/query"
	"github.com/tair/station-pos/kafka"
	"github.com/tair/station-pos/pkg/auth"
	"github.com/tair/station-pos/pkg/middleware"
)

type testServer struct {
	router  *mux.Router
	store   *memstore.Store
	water   uint
	cashier string
	manager string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := memstore.New()
	drinks := &catalogdomain.Category{Name: "Drinks", Active: true}
	s.SeedCategory(drinks)
	water := &catalogdomain.Product{Name: "Water", Price: decimal.RequireFromString("1.50"), Cost: decimal.RequireFromString("0.40"), CurrentStock: 3, Active: true, CategoryID: drinks.ID}
	s.SeedProduct(water)

	l := ledger.New(s)
	publisher := kafka.NoopPublisher{}
	tokens := auth.NewManager("test-secret", time.Hour)

	h := NewTransactionHandler(
		command.NewSettleTransactionHandler(s, l, numbering.NewGenerator(nil), publisher, command.DefaultSettlementOptions()),
		command.NewVoidTransactionHandler(s, l, publisher),
		query.NewGetTransactionHandler(s),
		query.NewListTransactionsHandler(s),
		query.NewSalesSummaryHandler(s),
		middleware.NewAuthenticator(tokens),
	)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	cashier, err := tokens.Generate(7, "cashier", auth.RoleCashier)
	require.NoError(t, err)
	manager, err := tokens.Generate(8, "manager", auth.RoleManager)
	require.NoError(t, err)

	return &testServer{router: router, store: s, water: water.ID, cashier: cashier, manager: manager}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func decodeTransaction(t *testing.T, data interface{}) domain.Transaction {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	var txn domain.Transaction
	require.NoError(t, json.Unmarshal(raw, &txn))
	return txn
}

func TestSettleAndVoidOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec, resp := ts.do(t, http.MethodPost, "/api/pos/transactions", ts.cashier, settleRequest{
		Items:         []settleItemRequest{{ProductID: &ts.water, Quantity: 2}},
		PaymentMethod: "CASH",
	})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Error)
	assert.True(t, resp.Success)
	txn := decodeTransaction(t, resp.Data)
	assert.Equal(t, "3.00", txn.TotalAmount.StringFixed(2))
	assert.Equal(t, uint(7), txn.CashierID)
	assert.Regexp(t, `^TXN-\d{8}-\d{6}-[0-9A-F]{4}$`, txn.TransactionNumber)

	rec, resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/pos/transactions/%d", txn.ID), ts.cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, txn.TransactionNumber, decodeTransaction(t, resp.Data).TransactionNumber)

	voidPath := fmt.Sprintf("/api/pos/transactions/%d/void", txn.ID)
	rec, _ = ts.do(t, http.MethodPost, voidPath, ts.cashier, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = ts.do(t, http.MethodPost, voidPath, ts.manager, voidRequest{Restock: true})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	assert.Equal(t, domain.StatusCancelled, decodeTransaction(t, resp.Data).Status)

	rec, resp = ts.do(t, http.MethodPost, voidPath, ts.manager, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Code)

	p, err := ts.store.ProductByID(t.Context(), ts.water)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CurrentStock)
}

func TestSettleErrorsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	missing := uint(999)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{"insufficient stock", settleRequest{Items: []settleItemRequest{{ProductID: &ts.water, Quantity: 4}}, PaymentMethod: "CASH"}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"unknown product", settleRequest{Items: []settleItemRequest{{ProductID: &missing, Quantity: 1}}, PaymentMethod: "CASH"}, http.StatusNotFound, "NOT_FOUND"},
		{"bad payment method", settleRequest{Items: []settleItemRequest{{ProductID: &ts.water, Quantity: 1}}, PaymentMethod: "BARTER"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"empty sale", settleRequest{PaymentMethod: "CASH"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"transaction number too long", settleRequest{Items: []settleItemRequest{{ProductID: &ts.water, Quantity: 1}}, PaymentMethod: "CASH", TransactionNumber: strings.Repeat("N", 33)}, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := ts.do(t, http.MethodPost, "/api/pos/transactions", ts.cashier, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantErr, resp.Code)
		})
	}

	p, err := ts.store.ProductByID(t.Context(), ts.water)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CurrentStock)
}

func TestVoidBodyWithoutContentLength(t *testing.T) {
	ts := newTestServer(t)
	settle := func() uint {
		rec, resp := ts.do(t, http.MethodPost, "/api/pos/transactions", ts.cashier, settleRequest{
			Items:         []settleItemRequest{{ProductID: &ts.water, Quantity: 1}},
			PaymentMethod: "CASH",
		})
		require.Equal(t, http.StatusCreated, rec.Code, resp.Error)
		return decodeTransaction(t, resp.Data).ID
	}
	// streamed wraps a body so that httptest leaves ContentLength at -1,
	// the way a chunked request arrives.
	streamed := func(body string) io.Reader {
		return struct{ io.Reader }{strings.NewReader(body)}
	}
	void := func(id uint, body io.Reader) (*httptest.ResponseRecorder, Response) {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/pos/transactions/%d/void", id), body)
		require.Equal(t, int64(-1), req.ContentLength)
		req.Header.Set("Authorization", "Bearer "+ts.manager)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return rec, resp
	}

	rec, resp := void(settle(), streamed(""))
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	assert.Equal(t, domain.StatusCancelled, decodeTransaction(t, resp.Data).Status)

	p, err := ts.store.ProductByID(t.Context(), ts.water)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentStock)

	rec, resp = void(settle(), streamed(`{"restock":true}`))
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	p, err = ts.store.ProductByID(t.Context(), ts.water)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentStock)

	rec, resp = void(settle(), streamed(`{"restock":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", resp.Code)
}

func TestListAndSummaryOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 2; i++ {
		rec, resp := ts.do(t, http.MethodPost, "/api/pos/transactions", ts.cashier, settleRequest{
			Items:         []settleItemRequest{{ProductID: &ts.water, Quantity: 1}},
			PaymentMethod: "DEBIT_CARD",
		})
		require.Equal(t, http.StatusCreated, rec.Code, resp.Error)
	}

	rec, _ := ts.do(t, http.MethodGet, "/api/pos/transactions", ts.cashier, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := ts.do(t, http.MethodGet, "/api/pos/transactions?cashier_id=7&status=COMPLETED&limit=1", ts.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	assert.Len(t, resp.Data, 1)

	rec, resp = ts.do(t, http.MethodGet, "/api/pos/transactions?from=yesterday", ts.manager, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", resp.Code)

	rec, resp = ts.do(t, http.MethodGet, "/api/pos/reports/sales", ts.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summary domain.SalesSummary
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, int64(2), summary.TransactionCount)
	assert.Equal(t, "3.00", summary.TotalAmount.StringFixed(2))
}
