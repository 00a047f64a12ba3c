package game

import (
	"time"

	"github.com/swaptoe/swaptoe/internal/engine"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusWon     Status = "won"
	StatusDraw    Status = "draw"
)

// Counters are the move and swap bookkeeping shown next to the board.
// Remaining budgets are -1 while the board still has empty cells.
type Counters struct {
	Moves          int    `json:"moves"`
	SwapsTotal     int    `json:"swaps_total"`
	SwapsAfterFull [2]int `json:"swaps_after_full"`
	RemainingX     int    `json:"remaining_x"`
	RemainingO     int    `json:"remaining_o"`
}

func countersOf(s *engine.State) Counters {
	return Counters{
		Moves:          s.Moves,
		SwapsTotal:     s.SwapsTotal,
		SwapsAfterFull: [2]int{s.SwapsUsedAfterFull(engine.X), s.SwapsUsedAfterFull(engine.O)},
		RemainingX:     budget(s.RemainingSwaps(engine.X)),
		RemainingO:     budget(s.RemainingSwaps(engine.O)),
	}
}

func budget(n int) int {
	if n == engine.Unlimited {
		return -1
	}
	return n
}

func cooldownOf(s *engine.State) []engine.Pos {
	pair, ok := s.CooldownPair()
	if !ok {
		return nil
	}
	return pair[:]
}

type MoveEvent struct {
	Grid       [][]engine.Mark `json:"grid"`
	Mover      engine.Mark     `json:"mover"`
	Move       engine.Move     `json:"move"`
	Status     Status          `json:"status"`
	Winner     engine.Mark     `json:"winner"`
	Line       []engine.Pos    `json:"line,omitempty"`
	Counters   Counters        `json:"counters"`
	Cooldown   []engine.Pos    `json:"cooldown,omitempty"`
	ByComputer bool            `json:"by_computer"`
	Reason     engine.Reason   `json:"reason,omitempty"`
	Elapsed    time.Duration   `json:"elapsed"`
}

type PassEvent struct {
	Passed engine.Mark `json:"passed"`
	ToMove engine.Mark `json:"to_move"`
	Moves  int         `json:"moves"`
}

type ResetEvent struct {
	Setup Setup `json:"setup"`
}

// Observer receives game events. Calls are made while the game is being
// mutated, so implementations must not call back into the game.
type Observer interface {
	MovePlayed(MoveEvent)
	TurnPassed(PassEvent)
	GameReset(ResetEvent)
}

// Snapshot is a copy of everything a client needs to draw the game.
type Snapshot struct {
	Setup        Setup           `json:"setup"`
	Grid         [][]engine.Mark `json:"grid"`
	ToMove       engine.Mark     `json:"to_move"`
	Status       Status          `json:"status"`
	Winner       engine.Mark     `json:"winner"`
	Line         []engine.Pos    `json:"line,omitempty"`
	Counters     Counters        `json:"counters"`
	Cooldown     []engine.Pos    `json:"cooldown,omitempty"`
	LastMove     *engine.Move    `json:"last_move,omitempty"`
	ComputerTurn bool            `json:"computer_turn"`
	HistorySize  int             `json:"history_size"`
}
