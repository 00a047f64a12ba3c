package game

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swaptoe/swaptoe/internal/engine"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
)

// Game is one in-memory session. It is not safe for concurrent use; see
// Controller.
type Game struct {
	setup     Setup
	state     *engine.State
	status    Status
	winner    engine.Mark
	line      []engine.Pos
	history   History
	searcher  *engine.Searcher
	observer  Observer
	turnStart time.Time
	now       func() time.Time
}

func NewGame(setup Setup, searcher *engine.Searcher) (*Game, error) {
	g := &Game{searcher: searcher, now: time.Now}
	if err := g.Configure(setup); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) SetObserver(o Observer) {
	g.observer = o
}

// Configure validates setup and starts a fresh game with it. On error the
// current game is left as it was.
func (g *Game) Configure(setup Setup) error {
	if err := setup.Validate(); err != nil {
		return err
	}
	if setup.Mode != ModePvC {
		setup.ComputerMark = engine.O
	}
	g.setup = setup
	g.reset()
	return nil
}

// Restart plays again with the same setup.
func (g *Game) Restart() {
	g.reset()
}

func (g *Game) reset() {
	if g.state == nil {
		g.state = engine.NewState(g.setup.Settings)
	} else {
		g.state.Reset(g.setup.Settings)
	}
	g.status = StatusRunning
	g.winner = engine.Empty
	g.line = nil
	g.history.Clear()
	g.searcher.Reset()
	g.turnStart = g.now()
	s := g.setup.Settings
	log.Info().
		Int("rows", s.Rows).
		Int("cols", s.Cols).
		Int("win-length", s.WinLength).
		Int("swap-limit", s.SwapLimitAfterFull).
		Str("mode", string(g.setup.Mode)).
		Str("computer", g.setup.ComputerMark.String()).
		Msg("game-started")
	if g.observer != nil {
		g.observer.GameReset(ResetEvent{Setup: g.setup})
	}
}

func (g *Game) Setup() Setup {
	return g.setup
}

func (g *Game) Status() Status {
	return g.status
}

func (g *Game) Winner() engine.Mark {
	return g.winner
}

func (g *Game) ToMove() engine.Mark {
	return g.state.ToMove
}

func (g *Game) History() History {
	return History{entries: g.history.All()}
}

func (g *Game) Searcher() *engine.Searcher {
	return g.searcher
}

// State returns a copy of the position.
func (g *Game) State() *engine.State {
	return g.state.Clone()
}

func (g *Game) IsComputerTurn() bool {
	return g.status == StatusRunning && g.setup.Mode.Plays(g.setup.ComputerMark, g.state.ToMove)
}

func (g *Game) RequestPlace(p engine.Pos) error {
	if err := g.humanTurn(); err != nil {
		return err
	}
	return g.apply(engine.PlaceAt(p), engine.Decision{})
}

func (g *Game) RequestSwap(a, b engine.Pos) error {
	if err := g.humanTurn(); err != nil {
		return err
	}
	return g.apply(engine.SwapOf(a, b), engine.Decision{})
}

func (g *Game) humanTurn() error {
	if g.status != StatusRunning {
		return ErrGameOver
	}
	if g.setup.Mode.Plays(g.setup.ComputerMark, g.state.ToMove) {
		return ErrNotYourTurn
	}
	return nil
}

// RequestComputerMove searches for and plays the computer's move. A search
// that yields no legal move means the game state is corrupt.
func (g *Game) RequestComputerMove() (engine.Decision, error) {
	if g.status != StatusRunning {
		return engine.Decision{}, ErrGameOver
	}
	if !g.IsComputerTurn() {
		return engine.Decision{}, ErrNotYourTurn
	}
	d := g.searcher.ChooseMove(g.state)
	if d.Reason == engine.ReasonNone {
		log.Panic().
			Str("to-move", g.state.ToMove.String()).
			Str("board", g.state.Board.String()).
			Msg("computer-has-no-move")
	}
	if err := g.apply(d.Move, d); err != nil {
		log.Panic().Err(err).
			Str("move", d.Move.String()).
			Str("board", g.state.Board.String()).
			Msg("computer-move-rejected")
	}
	return d, nil
}

// AgreeDraw ends a running game as a draw.
func (g *Game) AgreeDraw() error {
	if g.status != StatusRunning {
		return ErrGameOver
	}
	g.status = StatusDraw
	log.Info().Int("moves", g.state.Moves).Msg("draw-agreed")
	return nil
}

func (g *Game) apply(m engine.Move, d engine.Decision) error {
	if err := g.state.Validate(m); err != nil {
		log.Debug().Err(err).Str("move", m.String()).Msg("move-rejected")
		return err
	}
	byComputer := d.Reason != ""
	mover := g.state.ToMove
	elapsed := g.now().Sub(g.turnStart)
	g.state.Apply(m)

	outcome, line := g.state.ResolveLine(m, mover)
	switch outcome {
	case engine.MoverWins:
		g.finish(mover, line)
	case engine.OpponentWins:
		g.finish(mover.Opponent(), line)
	default:
		if g.state.IsDraw() {
			g.status = StatusDraw
			log.Info().Int("moves", g.state.Moves).Msg("game-drawn")
		}
	}

	g.history.Push(HistoryEntry{Mover: mover, Move: m, Elapsed: elapsed, ByComputer: byComputer, Depth: d.Depth})
	log.Info().
		Str("mover", mover.String()).
		Str("move", m.String()).
		Bool("computer", byComputer).
		Int("moves", g.state.Moves).
		Dur("elapsed", elapsed).
		Msg("move-played")
	if g.observer != nil {
		g.observer.MovePlayed(MoveEvent{
			Grid:       g.state.Board.Grid(),
			Mover:      mover,
			Move:       m,
			Status:     g.status,
			Winner:     g.winner,
			Line:       g.line,
			Counters:   countersOf(g.state),
			Cooldown:   cooldownOf(g.state),
			ByComputer: byComputer,
			Reason:     d.Reason,
			Elapsed:    elapsed,
		})
	}
	g.turnStart = g.now()

	if g.status == StatusRunning && g.state.MustPass() {
		passed := g.state.ToMove
		g.state.Pass()
		log.Info().Str("passed", passed.String()).Msg("turn-passed")
		if g.observer != nil {
			g.observer.TurnPassed(PassEvent{Passed: passed, ToMove: g.state.ToMove, Moves: g.state.Moves})
		}
	}
	return nil
}

func (g *Game) finish(winner engine.Mark, line []engine.Pos) {
	g.status = StatusWon
	g.winner = winner
	g.line = line
	log.Info().
		Str("winner", winner.String()).
		Int("moves", g.state.Moves).
		Msg("game-won")
}

func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Setup:        g.setup,
		Grid:         g.state.Board.Grid(),
		ToMove:       g.state.ToMove,
		Status:       g.status,
		Winner:       g.winner,
		Line:         append([]engine.Pos(nil), g.line...),
		Counters:     countersOf(g.state),
		Cooldown:     cooldownOf(g.state),
		ComputerTurn: g.IsComputerTurn(),
		HistorySize:  g.history.Size(),
	}
	if last, ok := g.history.Last(); ok {
		snap.LastMove = &last.Move
	}
	return snap
}
