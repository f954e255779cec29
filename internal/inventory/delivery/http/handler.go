package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/station-pos/internal/apperror"
	"github.com/tair/station-pos/internal/inventory/domain"
	"github.com/tair/station-pos/internal/inventory/usecase/command"
	"github.com/tair/station-pos/internal/inventory/usecase/query"
	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/middleware"
)

// InventoryHandler handles HTTP requests for stock, the ledger and lottery games
type InventoryHandler struct {
	restock      *command.RestockProductHandler
	adjust       *command.AdjustInventoryHandler
	sellTickets  *command.SellLotteryTicketsHandler
	restockPacks *command.RestockLotteryPacksHandler
	getProduct   *query.GetProductHandler
	lowStock     *query.ListLowStockHandler
	ledger       *query.ListProductLedgerHandler
	getGame      *query.GetLotteryGameHandler
	auth         *middleware.Authenticator
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	restock *command.RestockProductHandler,
	adjust *command.AdjustInventoryHandler,
	sellTickets *command.SellLotteryTicketsHandler,
	restockPacks *command.RestockLotteryPacksHandler,
	getProduct *query.GetProductHandler,
	lowStock *query.ListLowStockHandler,
	ledger *query.ListProductLedgerHandler,
	getGame *query.GetLotteryGameHandler,
	auth *middleware.Authenticator,
) *InventoryHandler {
	return &InventoryHandler{
		restock:      restock,
		adjust:       adjust,
		sellTickets:  sellTickets,
		restockPacks: restockPacks,
		getProduct:   getProduct,
		lowStock:     lowStock,
		ledger:       ledger,
		getGame:      getGame,
		auth:         auth,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

type restockRequest struct {
	Quantity  int    `json:"quantity"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type adjustRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type restockPacksRequest struct {
	Packs int `json:"packs"`
}

// GetProduct godoc
// @Summary Get product by ID
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/inventory/products/{id} [get]
func (h *InventoryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	product, err := h.getProduct.Handle(r.Context(), query.GetProductQuery{ID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// GetProductByBarcode godoc
// @Summary Scan a product barcode
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/inventory/products/barcode/{barcode} [get]
func (h *InventoryHandler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.getProduct.Handle(r.Context(), query.GetProductQuery{Barcode: mux.Vars(r)["barcode"]})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// ListLowStock godoc
// @Summary List low stock products
// @Description Active products at or below their reorder threshold
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} Response
// @Router /api/inventory/products/low-stock [get]
func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	products, err := h.lowStock.Handle(r.Context(), query.ListLowStockQuery{Limit: limit, Offset: offset})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: products})
}

// RestockProduct godoc
// @Summary Receive stock
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body restockRequest true "Received quantity"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/inventory/products/{id}/restock [post]
func (h *InventoryHandler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	id, err := pathUint(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid request body: %w", apperror.ErrInvalidInput))
		return
	}

	res, err := h.restock.Handle(r.Context(), command.RestockProductCommand{
		ProductID: id,
		Quantity:  req.Quantity,
		UserID:    actor.UserID,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock received successfully",
		Data:    res,
	})
}

// AdjustProduct godoc
// @Summary Adjust stock
// @Description Signed correction or waste write-off. Stock can never go negative.
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body adjustRequest true "Adjustment"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/inventory/products/{id}/adjust [post]
func (h *InventoryHandler) AdjustProduct(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	id, err := pathUint(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid request body: %w", apperror.ErrInvalidInput))
		return
	}

	res, err := h.adjust.Handle(r.Context(), command.AdjustInventoryCommand{
		ProductID: id,
		Delta:     req.Delta,
		Reason:    domain.EntryType(req.Reason),
		UserID:    actor.UserID,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock adjusted successfully",
		Data:    res,
	})
}

// ListProductLedger godoc
// @Summary Product ledger
// @Description Inventory transactions for one product, newest first
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/inventory/products/{id}/transactions [get]
func (h *InventoryHandler) ListProductLedger(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	limit, offset := paging(r)
	entries, err := h.ledger.Handle(r.Context(), query.ListProductLedgerQuery{ProductID: id, Limit: limit, Offset: offset})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: entries})
}

// GetLotteryGame godoc
// @Summary Get lottery game
// @Tags Lottery
// @Security BearerAuth
// @Produce json
// @Param id path int true "Game ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/lottery/{id} [get]
func (h *InventoryHandler) GetLotteryGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	game, err := h.getGame.Handle(r.Context(), query.GetLotteryGameQuery{ID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: game})
}

// SellLotteryTickets godoc
// @Summary Sell lottery tickets outside a sale
// @Tags Lottery
// @Security BearerAuth
// @Produce json
// @Param id path int true "Game ID"
// @Param quantity path int true "Tickets"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Router /api/lottery/{id}/sell/{quantity} [post]
func (h *InventoryHandler) SellLotteryTickets(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	quantity, err := pathUint(r, "quantity")
	if err != nil {
		respondError(w, r, err)
		return
	}

	game, err := h.sellTickets.Handle(r.Context(), command.SellLotteryTicketsCommand{GameID: id, Quantity: int(quantity)})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Tickets sold successfully",
		Data:    query.NewLotteryGameView(game),
	})
}

// RestockLotteryPacks godoc
// @Summary Receive lottery packs
// @Tags Lottery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Game ID"
// @Param request body restockPacksRequest true "Packs"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/lottery/{id}/restock [post]
func (h *InventoryHandler) RestockLotteryPacks(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req restockPacksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid request body: %w", apperror.ErrInvalidInput))
		return
	}

	game, err := h.restockPacks.Handle(r.Context(), command.RestockLotteryPacksCommand{GameID: id, Packs: req.Packs})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Lottery packs received successfully",
		Data:    query.NewLotteryGameView(game),
	})
}

// RegisterRoutes registers all inventory and lottery routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	products := router.PathPrefix("/api/inventory/products").Subrouter()
	products.HandleFunc("/low-stock", h.auth.Cashier(h.ListLowStock)).Methods("GET")
	products.HandleFunc("/barcode/{barcode}", h.auth.Cashier(h.GetProductByBarcode)).Methods("GET")
	products.HandleFunc("/{id:[0-9]+}", h.auth.Cashier(h.GetProduct)).Methods("GET")
	products.HandleFunc("/{id:[0-9]+}/restock", h.auth.Manager(h.RestockProduct)).Methods("POST")
	products.HandleFunc("/{id:[0-9]+}/adjust", h.auth.Manager(h.AdjustProduct)).Methods("POST")
	products.HandleFunc("/{id:[0-9]+}/transactions", h.auth.Manager(h.ListProductLedger)).Methods("GET")

	lottery := router.PathPrefix("/api/lottery").Subrouter()
	lottery.HandleFunc("/{id:[0-9]+}", h.auth.Cashier(h.GetLotteryGame)).Methods("GET")
	lottery.HandleFunc("/{id:[0-9]+}/sell/{quantity:[0-9]+}", h.auth.Cashier(h.SellLotteryTickets)).Methods("POST")
	lottery.HandleFunc("/{id:[0-9]+}/restock", h.auth.Manager(h.RestockLotteryPacks)).Methods("POST")
}

func pathUint(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, apperror.ErrInvalidInput)
	}
	return uint(v), nil
}

func paging(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

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
