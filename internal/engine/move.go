package engine

import (
	"encoding/json"
	"fmt"
)

type MoveKind uint8

const (
	NoMove MoveKind = iota
	Place
	Swap
)

func (k MoveKind) String() string {
	switch k {
	case Place:
		return "place"
	case Swap:
		return "swap"
	default:
		return "none"
	}
}

// Move is either a placement at A or a swap of A and B.
type Move struct {
	Kind MoveKind `json:"kind"`
	A    Pos      `json:"a"`
	B    Pos      `json:"b"`
}

func PlaceAt(p Pos) Move {
	return Move{Kind: Place, A: p}
}

func SwapOf(a, b Pos) Move {
	return Move{Kind: Swap, A: a, B: b}
}

func (m Move) IsZero() bool {
	return m.Kind == NoMove
}

// Equals treats swaps as unordered pairs.
func (m Move) Equals(other Move) bool {
	if m.Kind != other.Kind {
		return false
	}
	switch m.Kind {
	case Place:
		return m.A == other.A
	case Swap:
		return (m.A == other.A && m.B == other.B) || (m.A == other.B && m.B == other.A)
	default:
		return true
	}
}

// Touched lists the cells whose content the move changes.
func (m Move) Touched() []Pos {
	switch m.Kind {
	case Place:
		return []Pos{m.A}
	case Swap:
		return []Pos{m.A, m.B}
	default:
		return nil
	}
}

func (m Move) String() string {
	switch m.Kind {
	case Place:
		return fmt.Sprintf("place%s", m.A)
	case Swap:
		return fmt.Sprintf("swap%s%s", m.A, m.B)
	default:
		return "none"
	}
}

// MarshalJSON leaves b out of placements; a swap always carries it, even
// when it is (0,0).
func (m Move) MarshalJSON() ([]byte, error) {
	wire := struct {
		Kind MoveKind `json:"kind"`
		A    Pos      `json:"a"`
		B    *Pos     `json:"b,omitempty"`
	}{Kind: m.Kind, A: m.A}
	if m.Kind == Swap {
		wire.B = &m.B
	}
	return json.Marshal(wire)
}
