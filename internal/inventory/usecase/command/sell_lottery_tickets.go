package command

import (
	"context"
	"fmt"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/pkg/logger"
)

// SellLotteryTicketsCommand represents the command to take tickets off a game
type SellLotteryTicketsCommand struct {
	GameID   uint
	Quantity int
}

// SellLotteryTicketsHandler handles sell lottery tickets command
type SellLotteryTicketsHandler struct {
	ledger *ledger.Ledger
}

// NewSellLotteryTicketsHandler creates a new sell lottery tickets handler
func NewSellLotteryTicketsHandler(l *ledger.Ledger) *SellLotteryTicketsHandler {
	return &SellLotteryTicketsHandler{ledger: l}
}

// Handle executes the sell lottery tickets command
func (h *SellLotteryTicketsHandler) Handle(ctx context.Context, cmd SellLotteryTicketsCommand) (*catalogdomain.LotteryGame, error) {
	if cmd.GameID == 0 {
		return nil, fmt.Errorf("game_id is required: %w", apperror.ErrInvalidInput)
	}

	game, err := h.ledger.SellLotteryTickets(ctx, cmd.GameID, cmd.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to sell lottery tickets: %w", err)
	}

	logger.Info(ctx).
		Uint("game_id", cmd.GameID).
		Int("quantity", cmd.Quantity).
		Int("remaining", game.CurrentStock).
		Msg("Lottery tickets sold")

	return game, nil
}
