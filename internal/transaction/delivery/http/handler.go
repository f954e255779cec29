package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/transaction/domain"
	"github.com/tair/station-pos/internal/transaction/usecase/command"
	"github.com/tair/station-pos/internal/transaction/usecase/query"
	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/middleware"
)

// TransactionHandler handles HTTP requests for POS transactions
type TransactionHandler struct {
	settle  *command.SettleTransactionHandler
	void    *command.VoidTransactionHandler
	get     *query.GetTransactionHandler
	list    *query.ListTransactionsHandler
	summary *query.SalesSummaryHandler
	auth    *middleware.Authenticator
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	settle *command.SettleTransactionHandler,
	void *command.VoidTransactionHandler,
	get *query.GetTransactionHandler,
	list *query.ListTransactionsHandler,
	summary *query.SalesSummaryHandler,
	auth *middleware.Authenticator,
) *TransactionHandler {
	return &TransactionHandler{
		settle:  settle,
		void:    void,
		get:     get,
		list:    list,
		summary: summary,
		auth:    auth,
	}
}

// Response is the JSON envelope of every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

type settleItemRequest struct {
	ProductID     *uint `json:"product_id,omitempty"`
	LotteryGameID *uint `json:"lottery_game_id,omitempty"`
	Quantity      int   `json:"quantity"`
}

type settleRequest struct {
	Items             []settleItemRequest `json:"items"`
	PaymentMethod     string              `json:"payment_method"`
	PromotionID       *uint               `json:"promotion_id,omitempty"`
	TransactionNumber string              `json:"transaction_number,omitempty"`
}

type voidRequest struct {
	Restock bool `json:"restock"`
}

// SettleTransaction godoc
// @Summary Settle a sale
// @Description Price, tax, discount and commit a sale, decrementing stock atomically
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body settleRequest true "Sale"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/pos/transactions [post]
func (h *TransactionHandler) SettleTransaction(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
			Code:    apperror.Code(apperror.ErrInvalidInput),
		})
		return
	}

	items := make([]command.SettleItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, command.SettleItem{
			ProductID:     item.ProductID,
			LotteryGameID: item.LotteryGameID,
			Quantity:      item.Quantity,
		})
	}

	txn, err := h.settle.Handle(r.Context(), command.SettleTransactionCommand{
		Items:             items,
		PaymentMethod:     domain.PaymentMethod(req.PaymentMethod),
		CashierID:         actor.UserID,
		PromotionID:       req.PromotionID,
		TransactionNumber: req.TransactionNumber,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Transaction settled successfully",
		Data:    txn,
	})
}

// GetTransaction godoc
// @Summary Get transaction by ID
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/pos/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	txn, err := h.get.Handle(r.Context(), query.GetTransactionQuery{ID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: txn})
}

// ListTransactions godoc
// @Summary List transactions
// @Description Newest first, filtered by cashier, status and a [from, to) range
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param cashier_id query int false "Cashier ID"
// @Param status query string false "PENDING, COMPLETED or CANCELLED"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} Response
// @Router /api/pos/transactions [get]
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := query.ListTransactionsQuery{Status: domain.Status(params.Get("status"))}
	q.Limit, _ = strconv.Atoi(params.Get("limit"))
	q.Offset, _ = strconv.Atoi(params.Get("offset"))

	if raw := params.Get("cashier_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(w, r, fmt.Errorf("invalid cashier_id: %w", apperror.ErrInvalidInput))
			return
		}
		cashier := uint(id)
		q.CashierID = &cashier
	}

	var err error
	if q.From, err = optionalTime(params.Get("from"), "from"); err != nil {
		respondError(w, r, err)
		return
	}
	if q.To, err = optionalTime(params.Get("to"), "to"); err != nil {
		respondError(w, r, err)
		return
	}

	txns, err := h.list.Handle(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: txns})
}

// VoidTransaction godoc
// @Summary Void a completed transaction
// @Description Moves COMPLETED to CANCELLED. With restock=true every line is returned to stock.
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Param request body voidRequest false "Void options"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/pos/transactions/{id}/void [post]
func (h *TransactionHandler) VoidTransaction(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req voidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, fmt.Errorf("invalid request body: %w", apperror.ErrInvalidInput))
		return
	}

	txn, err := h.void.Handle(r.Context(), command.VoidTransactionCommand{
		TransactionID: id,
		UserID:        actor.UserID,
		Restock:       req.Restock,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Transaction voided successfully",
		Data:    txn,
	})
}

// SalesSummary godoc
// @Summary Sales summary
// @Description Count and totals of COMPLETED sales in [from, to). Defaults to the current UTC day.
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {object} Response
// @Router /api/pos/reports/sales [get]
func (h *TransactionHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	q := query.SalesSummaryQuery{From: today, To: today.Add(24 * time.Hour)}

	if from, err := optionalTime(params.Get("from"), "from"); err != nil {
		respondError(w, r, err)
		return
	} else if from != nil {
		q.From = *from
	}
	if to, err := optionalTime(params.Get("to"), "to"); err != nil {
		respondError(w, r, err)
		return
	} else if to != nil {
		q.To = *to
	}

	summary, err := h.summary.Handle(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: summary})
}

// RegisterRoutes registers all transaction routes
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/pos/transactions", h.auth.Cashier(h.SettleTransaction)).Methods("POST")
	router.HandleFunc("/api/pos/transactions", h.auth.Manager(h.ListTransactions)).Methods("GET")
	router.HandleFunc("/api/pos/transactions/{id:[0-9]+}", h.auth.Cashier(h.GetTransaction)).Methods("GET")
	router.HandleFunc("/api/pos/transactions/{id:[0-9]+}/void", h.auth.Manager(h.VoidTransaction)).Methods("POST")
	router.HandleFunc("/api/pos/reports/sales", h.auth.Manager(h.SalesSummary)).Methods("GET")
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, apperror.ErrInvalidInput)
	}
	return uint(id), nil
}

func optionalTime(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s, expected RFC3339: %w", name, apperror.ErrInvalidInput)
	}
	return &t, nil
}

// respondError maps domain errors to status codes. Internal errors are logged
// and never echoed to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Request failed")
		message = "Internal server error"
	}

	respondJSON(w, status, Response{
		Success: false,
		Error:   message,
		Code:    apperror.Code(err),
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
