package command

import (
	"context"
	"fmt"

	"github.com/tair/station-pos/internal/apperror"
	catalogdomain "github.com/tair/station-pos/internal/catalog/domain"
	"github.com/tair/station-pos/internal/inventory/ledger"
	"github.com/tair/station-pos/pkg/logger"
)

// RestockLotteryPacksCommand represents the command to activate new packs
type RestockLotteryPacksCommand struct {
	GameID uint
	Packs  int
}

// RestockLotteryPacksHandler handles restock lottery packs command
type RestockLotteryPacksHandler struct {
	ledger *ledger.Ledger
}

// NewRestockLotteryPacksHandler creates a new restock lottery packs handler
func NewRestockLotteryPacksHandler(l *ledger.Ledger) *RestockLotteryPacksHandler {
	return &RestockLotteryPacksHandler{ledger: l}
}

// Handle executes the restock lottery packs command
func (h *RestockLotteryPacksHandler) Handle(ctx context.Context, cmd RestockLotteryPacksCommand) (*catalogdomain.LotteryGame, error) {
	if cmd.GameID == 0 {
		return nil, fmt.Errorf("game_id is required: %w", apperror.ErrInvalidInput)
	}

	game, err := h.ledger.RestockLotteryPacks(ctx, cmd.GameID, cmd.Packs)
	if err != nil {
		return nil, fmt.Errorf("failed to restock lottery packs: %w", err)
	}

	logger.Info(ctx).
		Uint("game_id", cmd.GameID).
		Int("packs", cmd.Packs).
		Int("stock", game.CurrentStock).
		Msg("Lottery packs restocked")

	return game, nil
}
