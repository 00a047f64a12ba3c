package main

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/swaptoe/swaptoe/internal/engine"
)

var errMoveLimit = errors.New("move limit reached")

type contender struct {
	Name       string
	Search     engine.SearchConfig
	Heuristics engine.Heuristics
}

type gameResult struct {
	Winner engine.Mark
	Moves  int
	Passes int
}

var openingOffsets = [...][2]int{
	{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}, {2, 0}, {0, 2},
}

// buildOpeningSuite picks count openings of up to plies alternating
// placements near the centre. Cells come from a fixed neighbourhood, so
// plies is capped at the cells of it that fit on the board; a cell that
// would finish the game is skipped.
func buildOpeningSuite(settings engine.Settings, count, plies int) [][]engine.Pos {
	cr, cc := settings.Rows/2, settings.Cols/2
	cells := make([]engine.Pos, 0, len(openingOffsets))
	for _, d := range openingOffsets {
		p := engine.Pos{Row: cr + d[0], Col: cc + d[1]}
		if p.Row >= 0 && p.Col >= 0 && p.Row < settings.Rows && p.Col < settings.Cols {
			cells = append(cells, p)
		}
	}
	plies = max(0, min(plies, len(cells)))

	suite := make([][]engine.Pos, 0, count)
	for range count {
		s := engine.NewState(settings)
		opening := make([]engine.Pos, 0, plies)
		for _, i := range frand.Perm(len(cells)) {
			if len(opening) == plies {
				break
			}
			m := engine.PlaceAt(cells[i])
			mover := s.ToMove
			u := s.Apply(m)
			if s.Resolve(m, mover) != engine.Continue || s.IsDraw() {
				s.Undo(u)
				continue
			}
			opening = append(opening, cells[i])
		}
		suite = append(suite, opening)
	}
	return suite
}

// playGame runs one computer game. Each side gets its own searcher; x
// moves first.
func playGame(ctx context.Context, settings engine.Settings, x, o contender, opening []engine.Pos, maxMoves int) (gameResult, error) {
	s := engine.NewState(settings)
	searchers := map[engine.Mark]*engine.Searcher{
		engine.X: engine.NewSearcher(x.Search, x.Heuristics),
		engine.O: engine.NewSearcher(o.Search, o.Heuristics),
	}
	var res gameResult

	for _, p := range opening {
		m := engine.PlaceAt(p)
		if err := s.Validate(m); err != nil {
			return res, fmt.Errorf("opening %v: %w", p, err)
		}
		mover := s.ToMove
		s.Apply(m)
		switch s.Resolve(m, mover) {
		case engine.MoverWins:
			res.Winner = mover
		case engine.OpponentWins:
			res.Winner = mover.Opponent()
		default:
			continue
		}
		log.Warn().Str("cell", p.String()).Msg("selfplay-opening-decided-game")
		res.Moves = s.Moves
		return res, nil
	}

	for res.Moves = s.Moves; res.Moves < maxMoves; res.Moves = s.Moves {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if s.IsDraw() {
			return res, nil
		}
		if s.MustPass() {
			s.Pass()
			res.Passes++
			continue
		}
		mover := s.ToMove
		d := searchers[mover].ChooseMove(s)
		if err := s.Validate(d.Move); err != nil {
			return res, fmt.Errorf("%s chose %v: %w", mover, d.Move, err)
		}
		s.Apply(d.Move)
		switch s.Resolve(d.Move, mover) {
		case engine.MoverWins:
			res.Winner = mover
		case engine.OpponentWins:
			res.Winner = mover.Opponent()
		default:
			continue
		}
		res.Moves = s.Moves
		return res, nil
	}
	return res, errMoveLimit
}

type tally struct {
	Games  int
	WinsA  int
	WinsB  int
	Draws  int
	Moves  int
	Passes int
}

// add records a game in which a played X when aFirst is set.
func (t *tally) add(r gameResult, aFirst bool) {
	t.Games++
	t.Moves += r.Moves
	t.Passes += r.Passes
	switch {
	case r.Winner == engine.Empty:
		t.Draws++
	case (r.Winner == engine.X) == aFirst:
		t.WinsA++
	default:
		t.WinsB++
	}
}

func (t tally) score() float64 {
	if t.Games == 0 {
		return 0
	}
	return (float64(t.WinsA) + 0.5*float64(t.Draws)) / float64(t.Games)
}

// eloDiff estimates how much stronger a is than b from the match score.
func (t tally) eloDiff() float64 {
	sc := t.score()
	if sc <= 0 || sc >= 1 {
		return math.Copysign(math.Inf(1), sc-0.5)
	}
	return -400 * math.Log10(1/sc-1)
}

func (t tally) log() {
	avg := 0.0
	if t.Games > 0 {
		avg = float64(t.Moves) / float64(t.Games)
	}
	log.Info().
		Int("games", t.Games).
		Int("a-wins", t.WinsA).
		Int("b-wins", t.WinsB).
		Int("draws", t.Draws).
		Int("passes", t.Passes).
		Float64("avg-moves", avg).
		Float64("score", t.score()).
		Float64("elo-diff", t.eloDiff()).
		Msg("selfplay-summary")
}
