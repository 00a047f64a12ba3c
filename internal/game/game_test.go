package game

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/swaptoe/swaptoe/internal/engine"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type recorder struct {
	moves  []MoveEvent
	passes []PassEvent
	resets []ResetEvent
}

func (r *recorder) MovePlayed(e MoveEvent) { r.moves = append(r.moves, e) }
func (r *recorder) TurnPassed(e PassEvent) { r.passes = append(r.passes, e) }
func (r *recorder) GameReset(e ResetEvent) { r.resets = append(r.resets, e) }

func newTestGame(t *testing.T, setup Setup) (*Game, *recorder) {
	t.Helper()
	cfg := engine.DefaultSearchConfig()
	cfg.TimeBudget = 20 * time.Millisecond
	cfg.TTMaxEntries = 1 << 12
	g, err := NewGame(setup, engine.NewSearcher(cfg, engine.DefaultHeuristics()))
	require.NoError(t, err)
	rec := &recorder{}
	g.SetObserver(rec)
	return g, rec
}

func pvp(rows, cols, k, limit int) Setup {
	return Setup{
		Settings: engine.Settings{Rows: rows, Cols: cols, WinLength: k, SwapLimitAfterFull: limit},
		Mode:     ModePvP,
	}
}

func placeAll(t *testing.T, g *Game, cells ...engine.Pos) {
	t.Helper()
	for _, p := range cells {
		require.NoError(t, g.RequestPlace(p), "placing %v", p)
	}
}

func TestConfigureRejectsInvalidSettings(t *testing.T) {
	g, rec := newTestGame(t, pvp(3, 3, 3, 10))
	placeAll(t, g, engine.Pos{Row: 1, Col: 1})

	err := g.Configure(pvp(3, 3, 4, 10))
	require.ErrorIs(t, err, engine.ErrInvalidSettings)
	require.Equal(t, CodeInvalidSettings, ReasonCode(err))
	require.Equal(t, 1, g.History().Size())
	require.Equal(t, engine.X, g.State().Board.At(engine.Pos{Row: 1, Col: 1}))
	require.Empty(t, rec.resets)

	require.NoError(t, g.Configure(pvp(5, 7, 4, 3)))
	require.Len(t, rec.resets, 1)
	require.Equal(t, 0, g.History().Size())
	require.Equal(t, 7, g.State().Board.Cols())
}

func TestVerticalWinEndsGame(t *testing.T) {
	g, rec := newTestGame(t, pvp(3, 3, 3, 10))
	placeAll(t, g,
		engine.Pos{Row: 1, Col: 1},
		engine.Pos{Row: 0, Col: 0},
		engine.Pos{Row: 0, Col: 1},
		engine.Pos{Row: 2, Col: 2},
		engine.Pos{Row: 2, Col: 1},
	)
	require.Equal(t, StatusWon, g.Status())
	require.Equal(t, engine.X, g.Winner())

	last := rec.moves[len(rec.moves)-1]
	require.Equal(t, StatusWon, last.Status)
	require.Equal(t, engine.X, last.Winner)
	require.Equal(t, []engine.Pos{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 2, Col: 1}}, last.Line)
	require.Equal(t, 5, last.Counters.Moves)
	require.Equal(t, -1, last.Counters.RemainingX)

	err := g.RequestPlace(engine.Pos{Row: 2, Col: 0})
	require.ErrorIs(t, err, ErrGameOver)
	require.Equal(t, CodeGameOver, ReasonCode(err))
}

func TestRejectedMoveLeavesStateAlone(t *testing.T) {
	g, rec := newTestGame(t, pvp(3, 3, 3, 10))
	placeAll(t, g, engine.Pos{Row: 0, Col: 0}, engine.Pos{Row: 0, Col: 1})
	before := g.State()

	err := g.RequestPlace(engine.Pos{Row: 0, Col: 0})
	require.Equal(t, CodeCellOccupied, ReasonCode(err))

	err = g.RequestSwap(engine.Pos{Row: 0, Col: 0}, engine.Pos{Row: 2, Col: 2})
	require.Equal(t, CodeCellEmpty, ReasonCode(err))

	require.Equal(t, before, g.State())
	require.Len(t, rec.moves, 2)
}

func TestSwapEventCarriesCooldown(t *testing.T) {
	g, rec := newTestGame(t, pvp(4, 4, 4, 10))
	placeAll(t, g, engine.Pos{Row: 0, Col: 0}, engine.Pos{Row: 0, Col: 1})
	require.NoError(t, g.RequestSwap(engine.Pos{Row: 0, Col: 0}, engine.Pos{Row: 0, Col: 1}))

	last := rec.moves[len(rec.moves)-1]
	require.Equal(t, engine.Swap, last.Move.Kind)
	require.Equal(t, []engine.Pos{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, last.Cooldown)
	require.Equal(t, 1, last.Counters.SwapsTotal)

	err := g.RequestSwap(engine.Pos{Row: 0, Col: 1}, engine.Pos{Row: 0, Col: 0})
	require.Equal(t, CodeCooledDown, ReasonCode(err))
}

// fill plays a drawn-looking 3x3 grid, leaving O to move:
//
//	X O X
//	X O O
//	O X X
func fill(t *testing.T, g *Game) {
	placeAll(t, g,
		engine.Pos{Row: 0, Col: 0}, engine.Pos{Row: 0, Col: 1},
		engine.Pos{Row: 0, Col: 2}, engine.Pos{Row: 1, Col: 1},
		engine.Pos{Row: 1, Col: 0}, engine.Pos{Row: 1, Col: 2},
		engine.Pos{Row: 2, Col: 1}, engine.Pos{Row: 2, Col: 0},
		engine.Pos{Row: 2, Col: 2},
	)
}

func TestFullBoardWithoutSwapsIsDraw(t *testing.T) {
	g, rec := newTestGame(t, pvp(3, 3, 3, 0))
	fill(t, g)
	require.Equal(t, StatusDraw, g.Status())
	require.Equal(t, StatusDraw, rec.moves[len(rec.moves)-1].Status)
	require.Equal(t, 0, rec.moves[len(rec.moves)-1].Counters.RemainingO)
}

func TestExhaustedSideIsPassed(t *testing.T) {
	g, rec := newTestGame(t, pvp(3, 3, 3, 2))
	fill(t, g)
	require.Equal(t, StatusRunning, g.Status())
	require.Equal(t, engine.O, g.ToMove())

	g.state.SwapsAfterFull = [2]int{2, 0} // X has nothing left
	require.NoError(t, g.RequestSwap(engine.Pos{Row: 1, Col: 1}, engine.Pos{Row: 2, Col: 2}))
	require.Equal(t, StatusRunning, g.Status())

	require.Len(t, rec.passes, 1)
	require.Equal(t, PassEvent{Passed: engine.X, ToMove: engine.O, Moves: 10}, rec.passes[0])
	require.Equal(t, engine.O, g.ToMove())
}

func TestHumanCannotPlayForComputer(t *testing.T) {
	setup := DefaultSetup()
	g, rec := newTestGame(t, setup)

	_, err := g.RequestComputerMove()
	require.ErrorIs(t, err, ErrNotYourTurn)

	require.NoError(t, g.RequestPlace(engine.Pos{Row: 0, Col: 0}))
	require.True(t, g.IsComputerTurn())
	err = g.RequestPlace(engine.Pos{Row: 1, Col: 1})
	require.Equal(t, CodeNotYourTurn, ReasonCode(err))

	d, err := g.RequestComputerMove()
	require.NoError(t, err)
	require.NotEqual(t, engine.ReasonNone, d.Reason)

	h := g.History().All()
	require.Len(t, h, 2)
	require.False(t, h[0].ByComputer)
	require.True(t, h[1].ByComputer)
	require.Equal(t, engine.O, h[1].Mover)
	require.True(t, rec.moves[1].ByComputer)
	require.Equal(t, engine.X, g.ToMove())
}

func TestComputerTakesTheWin(t *testing.T) {
	setup := DefaultSetup()
	g, _ := newTestGame(t, setup)
	// O is one short of the top row, X one short of the bottom row
	for _, p := range []engine.Pos{{Row: 2, Col: 2}, {Row: 0, Col: 0}, {Row: 2, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}} {
		g.state.Apply(engine.PlaceAt(p))
	}
	require.Equal(t, engine.O, g.ToMove())

	d, err := g.RequestComputerMove()
	require.NoError(t, err)
	require.Equal(t, engine.ReasonWin, d.Reason)
	require.Equal(t, StatusWon, g.Status())
	require.Equal(t, engine.O, g.Winner())
}

func TestAgreeDrawAndRestart(t *testing.T) {
	g, rec := newTestGame(t, pvp(3, 3, 3, 10))
	placeAll(t, g, engine.Pos{Row: 1, Col: 1})
	require.NoError(t, g.AgreeDraw())
	require.Equal(t, StatusDraw, g.Status())
	require.ErrorIs(t, g.AgreeDraw(), ErrGameOver)

	g.Restart()
	require.Equal(t, StatusRunning, g.Status())
	require.Equal(t, 0, g.History().Size())
	require.Equal(t, 9, g.State().Board.CountEmpty())
	require.Len(t, rec.resets, 1)
}

func TestSnapshot(t *testing.T) {
	g, _ := newTestGame(t, pvp(3, 4, 3, 10))
	snap := g.Snapshot()
	require.Nil(t, snap.LastMove)
	require.Len(t, snap.Grid, 3)
	require.Len(t, snap.Grid[0], 4)

	placeAll(t, g, engine.Pos{Row: 2, Col: 3})
	snap = g.Snapshot()
	require.NotNil(t, snap.LastMove)
	require.Equal(t, engine.PlaceAt(engine.Pos{Row: 2, Col: 3}), *snap.LastMove)
	require.Equal(t, engine.X, snap.Grid[2][3])
	require.Equal(t, engine.O, snap.ToMove)
	require.False(t, snap.ComputerTurn)
	require.Equal(t, 1, snap.HistorySize)

	g.Restart()
	require.Nil(t, g.Snapshot().LastMove)
}

func TestReasonCodes(t *testing.T) {
	tests := map[error]string{
		nil:                       CodeApplied,
		engine.ErrCellOccupied:    CodeCellOccupied,
		engine.ErrCooledDown:      CodeCooledDown,
		engine.ErrNotAdjacent:     CodeNotAdjacent,
		engine.ErrSameSymbol:      CodeSameSymbol,
		engine.ErrBudgetExhausted: CodeBudgetExhausted,
		ErrNotYourTurn:            CodeNotYourTurn,
		ErrUnknownPreset:          CodeInvalidSettings,
	}
	for err, code := range tests {
		require.Equal(t, code, ReasonCode(err))
	}
}

func TestParseModeAndPresets(t *testing.T) {
	m, err := ParseMode("cvc")
	require.NoError(t, err)
	require.True(t, m.Plays(engine.O, engine.X))

	_, err = ParseMode("online")
	require.ErrorIs(t, err, ErrUnknownMode)

	s, err := PresetByName("15x15")
	require.NoError(t, err)
	require.Equal(t, 5, s.WinLength)
	for _, p := range Presets {
		require.NoError(t, p.Settings.Validate(), p.Name)
	}
	_, err = PresetByName("19x19")
	require.ErrorIs(t, err, ErrUnknownPreset)
}
