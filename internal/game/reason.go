package game

import (
	"errors"

	"github.com/swaptoe/swaptoe/internal/engine"
)

const (
	CodeApplied         = "applied"
	CodeCellOccupied    = "illegal-cell-occupied"
	CodeCooledDown      = "illegal-cell-cooled-down"
	CodeNotAdjacent     = "illegal-not-adjacent"
	CodeSameSymbol      = "illegal-same-symbol"
	CodeBudgetExhausted = "illegal-swap-budget-exhausted"
	CodeCellEmpty       = "illegal-cell-empty"
	CodeOutOfBounds     = "illegal-out-of-bounds"
	CodeUnknownMove     = "illegal-unknown-move"
	CodeGameOver        = "game-over"
	CodeNotYourTurn     = "not-your-turn"
	CodeInvalidSettings = "invalid-settings"
	CodeError           = "error"
)

var reasonCodes = []struct {
	err  error
	code string
}{
	{engine.ErrCellOccupied, CodeCellOccupied},
	{engine.ErrCooledDown, CodeCooledDown},
	{engine.ErrNotAdjacent, CodeNotAdjacent},
	{engine.ErrSameSymbol, CodeSameSymbol},
	{engine.ErrBudgetExhausted, CodeBudgetExhausted},
	{engine.ErrCellEmpty, CodeCellEmpty},
	{engine.ErrOutOfBounds, CodeOutOfBounds},
	{engine.ErrUnknownMove, CodeUnknownMove},
	{ErrGameOver, CodeGameOver},
	{ErrNotYourTurn, CodeNotYourTurn},
	{engine.ErrInvalidSettings, CodeInvalidSettings},
	{ErrUnknownMode, CodeInvalidSettings},
	{ErrUnknownPreset, CodeInvalidSettings},
}

// ReasonCode maps the result of a move request to its wire code.
func ReasonCode(err error) string {
	if err == nil {
		return CodeApplied
	}
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return CodeError
}
