package engine

import "fmt"

// Mark is the content of a single cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// ParseMark accepts "X", "O" and their lowercase forms.
func ParseMark(s string) (Mark, error) {
	switch s {
	case "X", "x":
		return X, nil
	case "O", "o":
		return O, nil
	default:
		return Empty, fmt.Errorf("unknown mark %q", s)
	}
}

func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mark) UnmarshalText(text []byte) error {
	if string(text) == "." || len(text) == 0 {
		*m = Empty
		return nil
	}
	parsed, err := ParseMark(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// slot maps X to 0 and O to 1 for per-player arrays.
func (m Mark) slot() int {
	if m == O {
		return 1
	}
	return 0
}

type Pos struct {
	Row int `json:"r"`
	Col int `json:"c"`
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

type Board struct {
	rows  int
	cols  int
	cells []Mark
	empty int
}

func NewBoard(rows, cols int) Board {
	b := Board{}
	b.Reset(rows, cols)
	return b
}

func (b *Board) Reset(rows, cols int) {
	b.rows = rows
	b.cols = cols
	b.cells = make([]Mark, rows*cols)
	b.empty = rows * cols
}

func (b Board) Rows() int { return b.rows }
func (b Board) Cols() int { return b.cols }

func (b Board) At(p Pos) Mark {
	return b.cells[b.index(p)]
}

// Set writes m at p and keeps the empty-cell count in sync.
func (b *Board) Set(p Pos, m Mark) {
	i := b.index(p)
	prev := b.cells[i]
	if prev == m {
		return
	}
	if prev == Empty {
		b.empty--
	} else if m == Empty {
		b.empty++
	}
	b.cells[i] = m
}

func (b Board) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < b.rows && p.Col < b.cols
}

func (b Board) IsEmpty(p Pos) bool {
	return b.InBounds(p) && b.At(p) == Empty
}

func (b Board) IsFull() bool {
	return b.empty == 0
}

func (b Board) CountEmpty() int {
	return b.empty
}

func (b Board) Clone() Board {
	clone := Board{rows: b.rows, cols: b.cols, empty: b.empty}
	clone.cells = make([]Mark, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

// Grid returns a row-major copy of the cells.
func (b Board) Grid() [][]Mark {
	grid := make([][]Mark, b.rows)
	for r := 0; r < b.rows; r++ {
		grid[r] = make([]Mark, b.cols)
		copy(grid[r], b.cells[r*b.cols:(r+1)*b.cols])
	}
	return grid
}

func (b Board) String() string {
	out := make([]byte, 0, b.rows*(b.cols+1))
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			out = append(out, b.cells[r*b.cols+c].String()...)
		}
		out = append(out, '\n')
	}
	return string(out)
}

func (b Board) index(p Pos) int {
	return p.Row*b.cols + p.Col
}

func (b Board) pos(i int) Pos {
	return Pos{Row: i / b.cols, Col: i % b.cols}
}

// BoardFromRows parses rows of 'X', 'O' and '.' into a board.
func BoardFromRows(rows ...string) (Board, error) {
	if len(rows) == 0 {
		return Board{}, fmt.Errorf("no rows")
	}
	b := NewBoard(len(rows), len(rows[0]))
	for r, line := range rows {
		if len(line) != b.cols {
			return Board{}, fmt.Errorf("row %d has %d cells, want %d", r, len(line), b.cols)
		}
		for c, ch := range line {
			switch ch {
			case 'X', 'x':
				b.Set(Pos{r, c}, X)
			case 'O', 'o':
				b.Set(Pos{r, c}, O)
			case '.', ' ', '_':
			default:
				return Board{}, fmt.Errorf("unexpected cell %q at %d,%d", ch, r, c)
			}
		}
	}
	return b, nil
}
