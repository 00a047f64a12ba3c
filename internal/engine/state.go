package engine

import (
	"errors"
	"fmt"
	"math"
)

const (
	MinSize      = 3
	MaxSize      = 15
	MinWinLength = 3
	MaxSwapLimit = 99

	// Unlimited is the remaining swap budget before the board fills up.
	Unlimited = math.MaxInt
)

var ErrInvalidSettings = errors.New("invalid settings")

type Settings struct {
	Rows               int `json:"rows"`
	Cols               int `json:"cols"`
	WinLength          int `json:"win_length"`
	SwapLimitAfterFull int `json:"swap_limit_after_full"`
}

func (s Settings) Validate() error {
	if s.Rows < MinSize || s.Rows > MaxSize {
		return fmt.Errorf("%w: rows %d outside %d..%d", ErrInvalidSettings, s.Rows, MinSize, MaxSize)
	}
	if s.Cols < MinSize || s.Cols > MaxSize {
		return fmt.Errorf("%w: cols %d outside %d..%d", ErrInvalidSettings, s.Cols, MinSize, MaxSize)
	}
	maxK := max(s.Rows, s.Cols)
	if s.WinLength < MinWinLength || s.WinLength > maxK {
		return fmt.Errorf("%w: win length %d outside %d..%d", ErrInvalidSettings, s.WinLength, MinWinLength, maxK)
	}
	if s.SwapLimitAfterFull < 0 || s.SwapLimitAfterFull > MaxSwapLimit {
		return fmt.Errorf("%w: swap limit %d outside 0..%d", ErrInvalidSettings, s.SwapLimitAfterFull, MaxSwapLimit)
	}
	return nil
}

// State is the full position: grid, counters, swap budgets and cooldown.
type State struct {
	Board          Board
	Settings       Settings
	ToMove         Mark
	Moves          int
	SwapsTotal     int
	SwapsAfterFull [2]int
	Blocked        [2]Pos
	BlockedMove    int
}

// NewState returns the starting position. Settings are not validated.
func NewState(settings Settings) *State {
	s := &State{}
	s.Reset(settings)
	return s
}

func (s *State) Reset(settings Settings) {
	s.Board = NewBoard(settings.Rows, settings.Cols)
	s.Settings = settings
	s.ToMove = X
	s.Moves = 0
	s.SwapsTotal = 0
	s.SwapsAfterFull = [2]int{}
	s.Blocked = [2]Pos{}
	s.BlockedMove = 0
}

func (s *State) Clone() *State {
	clone := *s
	clone.Board = s.Board.Clone()
	return &clone
}

func (s *State) RemainingSwaps(m Mark) int {
	if !s.Board.IsFull() {
		return Unlimited
	}
	return max(0, s.Settings.SwapLimitAfterFull-s.SwapsAfterFull[m.slot()])
}

func (s *State) SwapsUsedAfterFull(m Mark) int {
	return s.SwapsAfterFull[m.slot()]
}

// CooldownPair returns the blocked pair when it applies to the next move.
func (s *State) CooldownPair() ([2]Pos, bool) {
	if s.BlockedMove == 0 || s.BlockedMove != s.Moves+1 {
		return [2]Pos{}, false
	}
	return s.Blocked, true
}

func (s *State) IsCooledDown(p Pos) bool {
	pair, ok := s.CooldownPair()
	return ok && (pair[0] == p || pair[1] == p)
}

// IsDraw reports a full board with both post-fill budgets spent.
func (s *State) IsDraw() bool {
	return s.Board.IsFull() && s.RemainingSwaps(X) == 0 && s.RemainingSwaps(O) == 0
}

// MustPass reports that the side to move has no budget left but the
// opponent still has some.
func (s *State) MustPass() bool {
	return s.Board.IsFull() &&
		s.RemainingSwaps(s.ToMove) == 0 &&
		s.RemainingSwaps(s.ToMove.Opponent()) > 0
}

// Undo holds what Apply or Pass overwrote.
type Undo struct {
	move           Move
	prev           [2]Mark
	moves          int
	swapsTotal     int
	swapsAfterFull [2]int
	blocked        [2]Pos
	blockedMove    int
	toMove         Mark
}

// Apply plays m for the side to move without legality checks and flips
// the turn. Callers validate first.
func (s *State) Apply(m Move) Undo {
	u := Undo{
		move:           m,
		moves:          s.Moves,
		swapsTotal:     s.SwapsTotal,
		swapsAfterFull: s.SwapsAfterFull,
		blocked:        s.Blocked,
		blockedMove:    s.BlockedMove,
		toMove:         s.ToMove,
	}
	switch m.Kind {
	case Place:
		u.prev[0] = s.Board.At(m.A)
		s.Board.Set(m.A, s.ToMove)
		s.Moves++
	case Swap:
		a, b := s.Board.At(m.A), s.Board.At(m.B)
		u.prev = [2]Mark{a, b}
		s.Board.Set(m.A, b)
		s.Board.Set(m.B, a)
		s.Moves++
		s.SwapsTotal++
		if s.Board.IsFull() {
			s.SwapsAfterFull[s.ToMove.slot()]++
		}
		s.Blocked = [2]Pos{m.A, m.B}
		s.BlockedMove = s.Moves + 1
	default:
		panic(fmt.Sprintf("apply: unexpected move kind %d", m.Kind))
	}
	s.ToMove = s.ToMove.Opponent()
	return u
}

// Pass hands the turn over without consuming a move.
func (s *State) Pass() Undo {
	u := Undo{
		moves:          s.Moves,
		swapsTotal:     s.SwapsTotal,
		swapsAfterFull: s.SwapsAfterFull,
		blocked:        s.Blocked,
		blockedMove:    s.BlockedMove,
		toMove:         s.ToMove,
	}
	s.ToMove = s.ToMove.Opponent()
	return u
}

func (s *State) Undo(u Undo) {
	switch u.move.Kind {
	case Place:
		s.Board.Set(u.move.A, u.prev[0])
	case Swap:
		s.Board.Set(u.move.A, u.prev[0])
		s.Board.Set(u.move.B, u.prev[1])
	case NoMove:
	}
	s.Moves = u.moves
	s.SwapsTotal = u.swapsTotal
	s.SwapsAfterFull = u.swapsAfterFull
	s.Blocked = u.blocked
	s.BlockedMove = u.blockedMove
	s.ToMove = u.toMove
}
