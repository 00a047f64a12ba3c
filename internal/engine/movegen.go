package engine

import (
	"sort"

	"github.com/samber/lo"
)

const (
	localityRadius = 2
	swapWinBonus   = 1_000_000
)

var neighbourDeltas = [8][2]int{
	{1, 0}, {0, 1}, {1, 1}, {1, -1},
	{-1, 0}, {0, -1}, {-1, -1}, {-1, 1},
}

// Generator produces bounded, ordered candidate moves for one side.
type Generator struct {
	Eval     *Evaluator
	MaxPlace int
	MaxSwap  int
}

func (s *State) EmptyCells() []Pos {
	out := make([]Pos, 0, s.Board.CountEmpty())
	for i, m := range s.Board.cells {
		if m == Empty {
			out = append(out, s.Board.pos(i))
		}
	}
	return out
}

func centerDistance(b Board, p Pos) float64 {
	cr := float64(b.rows-1) / 2
	cc := float64(b.cols-1) / 2
	dr := float64(p.Row) - cr
	dc := float64(p.Col) - cc
	return dr*dr + dc*dc
}

func sortByCenter(b Board, cells []Pos) {
	sort.SliceStable(cells, func(i, j int) bool {
		return centerDistance(b, cells[i]) < centerDistance(b, cells[j])
	})
}

// NearestCenter returns the empty cell closest to the board centre.
func (s *State) NearestCenter() (Pos, bool) {
	empties := s.EmptyCells()
	if len(empties) == 0 {
		return Pos{}, false
	}
	return lo.MinBy(empties, func(a, b Pos) bool {
		return centerDistance(s.Board, a) < centerDistance(s.Board, b)
	}), true
}

func (b Board) hasMarkWithin(p Pos, radius int) bool {
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			q := Pos{p.Row + dr, p.Col + dc}
			if b.InBounds(q) && b.At(q) != Empty {
				return true
			}
		}
	}
	return false
}

// winsByPlacing reports whether m would complete a line by placing at p.
// The cell is written and cleared again.
func (b *Board) winsByPlacing(k int, p Pos, m Mark) bool {
	b.Set(p, m)
	win := CheckWinThrough(*b, k, p, m)
	b.Set(p, Empty)
	return win
}

// Places orders placement candidates for mover: wins, then blocks, then
// the rest by distance to the centre.
func (g Generator) Places(s *State, mover Mark) []Move {
	empties := s.EmptyCells()
	if len(empties) == 0 {
		return nil
	}
	if s.Board.CountEmpty() == len(s.Board.cells) {
		sortByCenter(s.Board, empties)
		return placeMoves(empties, g.MaxPlace)
	}

	pool := lo.Filter(empties, func(p Pos, _ int) bool {
		return s.Board.hasMarkWithin(p, localityRadius)
	})
	if len(pool) == 0 {
		pool = empties
	}

	k := s.Settings.WinLength
	opp := mover.Opponent()
	var wins, blocks, rest []Pos
	for _, p := range pool {
		switch {
		case s.Board.winsByPlacing(k, p, mover):
			wins = append(wins, p)
		case s.Board.winsByPlacing(k, p, opp):
			blocks = append(blocks, p)
		default:
			rest = append(rest, p)
		}
	}
	sortByCenter(s.Board, rest)
	ordered := append(append(wins, blocks...), rest...)
	return placeMoves(ordered, g.MaxPlace)
}

func placeMoves(cells []Pos, limit int) []Move {
	if limit > 0 && len(cells) > limit {
		cells = cells[:limit]
	}
	return lo.Map(cells, func(p Pos, _ int) Move { return PlaceAt(p) })
}

// LegalSwaps lists every adjacent opposite-mark pair outside the cooldown,
// each pair once. The swap budget is not consulted.
func (s *State) LegalSwaps() []Move {
	var out []Move
	b := s.Board
	for i, v1 := range b.cells {
		if v1 == Empty {
			continue
		}
		p := b.pos(i)
		for _, d := range neighbourDeltas {
			q := Pos{p.Row + d[0], p.Col + d[1]}
			if !b.InBounds(q) {
				continue
			}
			v2 := b.At(q)
			if v2 == Empty || v2 == v1 {
				continue
			}
			// the pair is seen from both ends; keep the first by index
			if b.index(q) < i {
				continue
			}
			if s.IsCooledDown(p) || s.IsCooledDown(q) {
				continue
			}
			out = append(out, SwapOf(p, q))
		}
	}
	return out
}

// SwapOutcome reports what swapping a and b would mean for mover. The
// board is swapped and restored in place, so the state must not be shared
// with another goroutine during the call. opponentWins is only evaluated
// when the mover does not win.
func SwapOutcome(s *State, a, b Pos, mover Mark) (moverWins, opponentWins bool) {
	board := &s.Board
	va, vb := board.At(a), board.At(b)
	board.Set(a, vb)
	board.Set(b, va)
	defer func() {
		board.Set(a, va)
		board.Set(b, vb)
	}()

	k := s.Settings.WinLength
	if CheckWinThrough(*board, k, a, mover) || CheckWinThrough(*board, k, b, mover) {
		return true, false
	}
	opp := mover.Opponent()
	return false, CheckWinThrough(*board, k, a, opp) || CheckWinThrough(*board, k, b, opp)
}

type scoredMove struct {
	move  Move
	score float64
}

// Swaps scores every legal swap for mover and keeps the best MaxSwap.
func (g Generator) Swaps(s *State, mover Mark) []Move {
	if s.RemainingSwaps(mover) == 0 {
		return nil
	}
	swaps := s.LegalSwaps()
	if len(swaps) == 0 {
		return nil
	}
	scored := make([]scoredMove, 0, len(swaps))
	for _, m := range swaps {
		moverWins, oppWins := SwapOutcome(s, m.A, m.B, mover)
		priority := 0.0
		if moverWins {
			priority = swapWinBonus
		} else if oppWins {
			priority = -swapWinBonus
		}
		scored = append(scored, scoredMove{move: m, score: priority + g.scoreAfterSwap(s, m, mover)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if g.MaxSwap > 0 && len(scored) > g.MaxSwap {
		scored = scored[:g.MaxSwap]
	}
	return lo.Map(scored, func(sm scoredMove, _ int) Move { return sm.move })
}

// scoreAfterSwap evaluates the grid with m applied. Counters and cooldown
// are left alone, only the two cells are exchanged and restored.
func (g Generator) scoreAfterSwap(s *State, m Move, mover Mark) float64 {
	if g.Eval == nil {
		return 0
	}
	board := &s.Board
	va, vb := board.At(m.A), board.At(m.B)
	board.Set(m.A, vb)
	board.Set(m.B, va)
	score := g.Eval.Evaluate(s, mover)
	board.Set(m.A, va)
	board.Set(m.B, vb)
	return score
}

// Moves is the combined candidate list: placements while the board has
// room, then swaps.
func (g Generator) Moves(s *State, mover Mark) []Move {
	var out []Move
	if !s.Board.IsFull() {
		out = append(out, g.Places(s, mover)...)
	}
	return append(out, g.Swaps(s, mover)...)
}
