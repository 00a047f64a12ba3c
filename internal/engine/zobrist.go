package engine

import (
	"math"

	"lukechampine.com/frand"
)

const swapCountKeys = MaxSwapLimit + 1

// Zobrist holds the random keys for one board shape.
type Zobrist struct {
	rows     int
	cols     int
	cells    []uint64
	cooldown []uint64
	side     uint64
	swaps    [2][swapCountKeys]uint64
}

func randomKey() uint64 {
	return frand.Uint64n(math.MaxUint64-1) + 1
}

func NewZobrist(rows, cols int) *Zobrist {
	n := rows * cols
	z := &Zobrist{
		rows:     rows,
		cols:     cols,
		cells:    make([]uint64, n*2),
		cooldown: make([]uint64, n),
		side:     randomKey(),
	}
	for i := range z.cells {
		z.cells[i] = randomKey()
	}
	for i := range z.cooldown {
		z.cooldown[i] = randomKey()
	}
	for p := range z.swaps {
		for i := range z.swaps[p] {
			z.swaps[p][i] = randomKey()
		}
	}
	return z
}

func (z *Zobrist) Fits(rows, cols int) bool {
	return z.rows == rows && z.cols == cols
}

// Hash covers the grid, side to move, the cooldown pair when it binds the
// next move, and both post-fill swap counts.
func (z *Zobrist) Hash(s *State) uint64 {
	var key uint64
	for i, m := range s.Board.cells {
		if m == Empty {
			continue
		}
		key ^= z.cells[i*2+m.slot()]
	}
	if s.ToMove == O {
		key ^= z.side
	}
	if pair, ok := s.CooldownPair(); ok {
		key ^= z.cooldown[s.Board.index(pair[0])]
		key ^= z.cooldown[s.Board.index(pair[1])]
	}
	for p := range s.SwapsAfterFull {
		key ^= z.swaps[p][clampSwapCount(s.SwapsAfterFull[p])]
	}
	return key
}

func clampSwapCount(n int) int {
	return min(max(n, 0), swapCountKeys-1)
}
