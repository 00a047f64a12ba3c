package engine

import (
	"testing"

	"github.com/matryer/is"
)

func TestHashIncludesSideAndSwapCounts(t *testing.T) {
	is := is.New(t)
	z := NewZobrist(3, 3)
	s := mustState(t, 3, 5,
		"X..",
		"...",
		"...",
	)
	base := z.Hash(s)

	side := s.Clone()
	side.ToMove = O
	is.True(z.Hash(side) != base)

	swaps := s.Clone()
	swaps.SwapsAfterFull = [2]int{1, 0}
	is.True(z.Hash(swaps) != base)

	mirrored := s.Clone()
	mirrored.SwapsAfterFull = [2]int{0, 1}
	is.True(z.Hash(mirrored) != z.Hash(swaps)) // per-player keys
}

func TestHashIncludesCooldownOnlyWhileActive(t *testing.T) {
	is := is.New(t)
	z := NewZobrist(3, 3)
	s := mustState(t, 3, 5,
		"XO.",
		"...",
		"...",
	)
	s.Moves = 4
	plain := z.Hash(s)

	s.Blocked = [2]Pos{{0, 0}, {0, 1}}
	s.BlockedMove = 5
	active := z.Hash(s)
	is.True(active != plain)

	s.Blocked = [2]Pos{{0, 1}, {0, 0}}
	is.Equal(z.Hash(s), active) // pair order does not matter

	s.BlockedMove = 4
	is.Equal(z.Hash(s), plain) // stale block is ignored
}

func TestHashIgnoresMoveOrder(t *testing.T) {
	is := is.New(t)
	z := NewZobrist(4, 4)
	settings := Settings{Rows: 4, Cols: 4, WinLength: 4}

	a := NewState(settings)
	for _, p := range []Pos{{0, 0}, {1, 1}, {2, 2}, {3, 3}} {
		a.Apply(PlaceAt(p))
	}
	b := NewState(settings)
	for _, p := range []Pos{{2, 2}, {3, 3}, {0, 0}, {1, 1}} {
		b.Apply(PlaceAt(p))
	}
	is.Equal(a.Board.Grid(), b.Board.Grid())
	is.Equal(z.Hash(a), z.Hash(b))
}

func TestZobristFits(t *testing.T) {
	is := is.New(t)
	z := NewZobrist(5, 7)
	is.True(z.Fits(5, 7))
	is.True(!z.Fits(7, 5))
}
