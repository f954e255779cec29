package query

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
)

// LotteryGameView is a lottery game with its pack economics
type LotteryGameView struct {
	catalogdomain.LotteryGame
	PackValue  decimal.Decimal `json:"pack_value"`
	PackProfit decimal.Decimal `json:"pack_profit"`
}

// NewLotteryGameView derives pack value and profit from a game
func NewLotteryGameView(g *catalogdomain.LotteryGame) *LotteryGameView {
	return &LotteryGameView{
		LotteryGame: *g,
		PackValue:   g.PackValue(),
		PackProfit:  g.PackProfit(),
	}
}

// GetLotteryGameQuery looks a game up by id or, when ID is zero, by barcode
type GetLotteryGameQuery struct {
	ID      uint
	Barcode string
}

// GetLotteryGameHandler handles get lottery game query
type GetLotteryGameHandler struct {
	reader catalogdomain.Reader
}

// NewGetLotteryGameHandler creates a new get lottery game handler
func NewGetLotteryGameHandler(reader catalogdomain.Reader) *GetLotteryGameHandler {
	return &GetLotteryGameHandler{reader: reader}
}

// Handle executes the get lottery game query
func (h *GetLotteryGameHandler) Handle(ctx context.Context, query GetLotteryGameQuery) (*LotteryGameView, error) {
	var (
		g   *catalogdomain.LotteryGame
		err error
	)
	switch {
	case query.ID != 0:
		g, err = h.reader.LotteryGameByID(ctx, query.ID)
	case query.Barcode != "":
		g, err = h.reader.LotteryGameByBarcode(ctx, query.Barcode)
	default:
		return nil, fmt.Errorf("id or barcode is required: %w", apperror.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery game: %w", err)
	}

	return NewLotteryGameView(g), nil
}
