package engine

import "errors"

var (
	ErrOutOfBounds     = errors.New("cell out of bounds")
	ErrCellOccupied    = errors.New("cell occupied")
	ErrCooledDown      = errors.New("cell cooled down after last swap")
	ErrCellEmpty       = errors.New("swap needs two occupied cells")
	ErrSameSymbol      = errors.New("swap needs different marks")
	ErrNotAdjacent     = errors.New("swap needs adjacent cells")
	ErrBudgetExhausted = errors.New("swap budget exhausted")
	ErrUnknownMove     = errors.New("unknown move kind")
)

var lineDirections = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

type Outcome uint8

const (
	Continue Outcome = iota
	MoverWins
	OpponentWins
)

func (o Outcome) String() string {
	switch o {
	case MoverWins:
		return "mover-wins"
	case OpponentWins:
		return "opponent-wins"
	default:
		return "continue"
	}
}

// IsAdjacent reports whether a and b are distinct 8-neighbours.
func IsAdjacent(a, b Pos) bool {
	if a == b {
		return false
	}
	dr, dc := a.Row-b.Row, a.Col-b.Col
	return dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1
}

func (b Board) countDirection(p Pos, dr, dc int, m Mark) int {
	count := 0
	next := Pos{p.Row + dr, p.Col + dc}
	for b.InBounds(next) && b.At(next) == m {
		count++
		next = Pos{next.Row + dr, next.Col + dc}
	}
	return count
}

// CheckWinThrough reports whether m holds k in a row through p.
func CheckWinThrough(b Board, k int, p Pos, m Mark) bool {
	if m == Empty || !b.InBounds(p) || b.At(p) != m {
		return false
	}
	for _, d := range lineDirections {
		count := 1 + b.countDirection(p, d[0], d[1], m) + b.countDirection(p, -d[0], -d[1], m)
		if count >= k {
			return true
		}
	}
	return false
}

// WinningLine returns k cells of a qualifying run through p, or nil.
func WinningLine(b Board, k int, p Pos, m Mark) []Pos {
	if m == Empty || !b.InBounds(p) || b.At(p) != m {
		return nil
	}
	for _, d := range lineDirections {
		back := b.countDirection(p, -d[0], -d[1], m)
		fwd := b.countDirection(p, d[0], d[1], m)
		run := back + 1 + fwd
		if run < k {
			continue
		}
		start := min(max(back-(k-1), 0), run-k)
		line := make([]Pos, k)
		origin := Pos{p.Row - back*d[0], p.Col - back*d[1]}
		for i := range line {
			step := start + i
			line[i] = Pos{origin.Row + step*d[0], origin.Col + step*d[1]}
		}
		return line
	}
	return nil
}

func (s *State) ValidatePlace(p Pos) error {
	if !s.Board.InBounds(p) {
		return ErrOutOfBounds
	}
	if s.Board.At(p) != Empty {
		return ErrCellOccupied
	}
	return nil
}

// ValidateSwap checks a swap by the side to move.
func (s *State) ValidateSwap(a, b Pos) error {
	if !s.Board.InBounds(a) || !s.Board.InBounds(b) {
		return ErrOutOfBounds
	}
	if s.RemainingSwaps(s.ToMove) == 0 {
		return ErrBudgetExhausted
	}
	if s.IsCooledDown(a) || s.IsCooledDown(b) {
		return ErrCooledDown
	}
	va, vb := s.Board.At(a), s.Board.At(b)
	if va == Empty || vb == Empty {
		return ErrCellEmpty
	}
	if va == vb {
		return ErrSameSymbol
	}
	if !IsAdjacent(a, b) {
		return ErrNotAdjacent
	}
	return nil
}

func (s *State) Validate(m Move) error {
	switch m.Kind {
	case Place:
		return s.ValidatePlace(m.A)
	case Swap:
		return s.ValidateSwap(m.A, m.B)
	default:
		return ErrUnknownMove
	}
}

// Resolve applies the win policy to a move mover just played: a line for
// the mover wins first, then a line for the opponent.
func (s *State) Resolve(m Move, mover Mark) Outcome {
	outcome, _ := s.resolveAt(m, mover)
	return outcome
}

// ResolveLine is Resolve plus the winning cells, if any.
func (s *State) ResolveLine(m Move, mover Mark) (Outcome, []Pos) {
	outcome, at := s.resolveAt(m, mover)
	switch outcome {
	case MoverWins:
		return outcome, WinningLine(s.Board, s.Settings.WinLength, at, mover)
	case OpponentWins:
		return outcome, WinningLine(s.Board, s.Settings.WinLength, at, mover.Opponent())
	default:
		return outcome, nil
	}
}

func (s *State) resolveAt(m Move, mover Mark) (Outcome, Pos) {
	k := s.Settings.WinLength
	switch m.Kind {
	case Place:
		if CheckWinThrough(s.Board, k, m.A, mover) {
			return MoverWins, m.A
		}
		return Continue, Pos{}
	case Swap:
		for _, p := range [2]Pos{m.A, m.B} {
			if CheckWinThrough(s.Board, k, p, mover) {
				return MoverWins, p
			}
		}
		opp := mover.Opponent()
		for _, p := range [2]Pos{m.A, m.B} {
			if CheckWinThrough(s.Board, k, p, opp) {
				return OpponentWins, p
			}
		}
		return Continue, Pos{}
	default:
		return Continue, Pos{}
	}
}
