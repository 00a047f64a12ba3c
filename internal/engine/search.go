package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// WinScore is the magnitude of a decided position, before depth bias.
const WinScore = 10_000_000

type SearchConfig struct {
	TimeBudget      time.Duration `json:"time_budget" mapstructure:"time_budget"`
	MaxDepthSmall   int           `json:"max_depth_small" mapstructure:"max_depth_small"`
	MaxDepthLarge   int           `json:"max_depth_large" mapstructure:"max_depth_large"`
	SmallBoardCells int           `json:"small_board_cells" mapstructure:"small_board_cells"`
	MaxPlaceMoves   int           `json:"max_place_moves" mapstructure:"max_place_moves"`
	MaxSwapMoves    int           `json:"max_swap_moves" mapstructure:"max_swap_moves"`
	TTMaxEntries    int           `json:"tt_max_entries" mapstructure:"tt_max_entries"`
}

func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		TimeBudget:      320 * time.Millisecond,
		MaxDepthSmall:   7,
		MaxDepthLarge:   4,
		SmallBoardCells: 25,
		MaxPlaceMoves:   28,
		MaxSwapMoves:    22,
		TTMaxEntries:    200_000,
	}
}

func (c SearchConfig) maxDepth(s Settings) int {
	if s.Rows*s.Cols <= c.SmallBoardCells {
		return c.MaxDepthSmall
	}
	return c.MaxDepthLarge
}

// Reason explains how ChooseMove picked its move.
type Reason string

const (
	ReasonWin       Reason = "win"
	ReasonSwapWin   Reason = "swap-win"
	ReasonBlock     Reason = "block"
	ReasonSwapBlock Reason = "swap-block"
	ReasonSearch    Reason = "search"
	ReasonFallback  Reason = "fallback"
	ReasonNone      Reason = "none"
)

type Decision struct {
	Move    Move          `json:"move"`
	Reason  Reason        `json:"reason"`
	Depth   int           `json:"depth"`
	Score   float64       `json:"score"`
	Nodes   int           `json:"nodes"`
	Elapsed time.Duration `json:"elapsed"`
}

// DepthReport describes one fully completed iteration.
type DepthReport struct {
	Mover   Mark          `json:"mover"`
	Depth   int           `json:"depth"`
	Best    Move          `json:"best"`
	Score   float64       `json:"score"`
	Nodes   int           `json:"nodes"`
	Elapsed time.Duration `json:"elapsed"`
}

type DepthObserver interface {
	DepthCompleted(DepthReport)
}

type SearchStats struct {
	Nodes    int
	Cutoffs  int
	TTHits   int
	Timeouts int
}

// Searcher owns the transposition table and hash keys for one game.
// It is not safe for concurrent use.
type Searcher struct {
	cfg      SearchConfig
	h        Heuristics
	tt       *TranspositionTable
	zobrist  *Zobrist
	eval     *Evaluator
	gen      Generator
	observer DepthObserver
	now      func() time.Time
	settings Settings

	deadline time.Time
	stats    SearchStats
}

func NewSearcher(cfg SearchConfig, h Heuristics) *Searcher {
	return &Searcher{
		cfg: cfg,
		h:   h,
		tt:  NewTranspositionTable(cfg.TTMaxEntries),
		now: time.Now,
	}
}

func (sr *Searcher) SetObserver(o DepthObserver) {
	sr.observer = o
}

func (sr *Searcher) Config() SearchConfig {
	return sr.cfg
}

func (sr *Searcher) Heuristics() Heuristics {
	return sr.h
}

// Reconfigure swaps limits and weights. Cached scores came from the old
// weights, so the table is dropped.
func (sr *Searcher) Reconfigure(cfg SearchConfig, h Heuristics) {
	sr.cfg = cfg
	sr.h = h
	sr.tt = NewTranspositionTable(cfg.TTMaxEntries)
	sr.eval = nil
}

// Reset forgets everything learned in the previous game.
func (sr *Searcher) Reset() {
	sr.tt.Clear()
	sr.zobrist = nil
	sr.eval = nil
}

func (sr *Searcher) Table() *TranspositionTable {
	return sr.tt
}

// prepare readies keys and weights for s. Hashes do not cover the win
// length or swap limit, so a change of settings drops the table.
func (sr *Searcher) prepare(s Settings) {
	if sr.zobrist != nil && s != sr.settings {
		sr.tt.Clear()
	}
	sr.settings = s
	if sr.zobrist == nil || !sr.zobrist.Fits(s.Rows, s.Cols) {
		sr.zobrist = NewZobrist(s.Rows, s.Cols)
	}
	if sr.eval == nil || sr.eval.WinLength() != s.WinLength {
		sr.eval = NewEvaluator(sr.h, s.WinLength)
	}
	sr.gen = Generator{Eval: sr.eval, MaxPlace: sr.cfg.MaxPlaceMoves, MaxSwap: sr.cfg.MaxSwapMoves}
}

func (sr *Searcher) timedOut() bool {
	return !sr.now().Before(sr.deadline)
}

// ChooseMove picks a move for the side to move in s. The search runs on a
// private copy; s is not modified. Tactical shortcuts come first, then
// iterative deepening within the time budget, then fallbacks.
func (sr *Searcher) ChooseMove(s *State) Decision {
	start := sr.now()
	work := s.Clone()
	sr.prepare(work.Settings)
	sr.stats = SearchStats{}
	sr.tt.NextGeneration()

	decision := sr.choose(work, start)
	decision.Nodes = sr.stats.Nodes
	decision.Elapsed = sr.now().Sub(start)
	log.Info().
		Str("mover", s.ToMove.String()).
		Str("move", decision.Move.String()).
		Str("reason", string(decision.Reason)).
		Int("depth", decision.Depth).
		Float64("score", decision.Score).
		Int("nodes", decision.Nodes).
		Int("tt-hits", sr.stats.TTHits).
		Int("cutoffs", sr.stats.Cutoffs).
		Int("tt-entries", sr.tt.Count()).
		Dur("elapsed", decision.Elapsed).
		Msg("computer-move-chosen")
	return decision
}

func (sr *Searcher) choose(s *State, start time.Time) Decision {
	mover := s.ToMove
	opp := mover.Opponent()
	k := s.Settings.WinLength
	empties := s.EmptyCells()
	legal := s.LegalSwaps()
	swaps := legal
	if s.RemainingSwaps(mover) == 0 {
		swaps = nil
	}

	for _, p := range empties {
		if s.Board.winsByPlacing(k, p, mover) {
			return Decision{Move: PlaceAt(p), Reason: ReasonWin, Score: WinScore}
		}
	}
	for _, m := range swaps {
		if wins, _ := SwapOutcome(s, m.A, m.B, mover); wins {
			return Decision{Move: m, Reason: ReasonSwapWin, Score: WinScore}
		}
	}
	for _, p := range empties {
		if s.Board.winsByPlacing(k, p, opp) {
			return Decision{Move: PlaceAt(p), Reason: ReasonBlock}
		}
	}
	if m, ok := swapBlock(s, legal, swaps); ok {
		return Decision{Move: m, Reason: ReasonSwapBlock}
	}

	if d, ok := sr.deepen(s, start); ok {
		return d
	}

	if p, ok := s.NearestCenter(); ok {
		return Decision{Move: PlaceAt(p), Reason: ReasonFallback}
	}
	for _, m := range swaps {
		if _, gifts := SwapOutcome(s, m.A, m.B, mover); !gifts {
			return Decision{Move: m, Reason: ReasonFallback}
		}
	}
	if len(swaps) > 0 {
		return Decision{Move: swaps[0], Reason: ReasonFallback}
	}
	return Decision{Reason: ReasonNone}
}

// swapBlock answers an opponent's winning swap with a swap of our own that
// gifts nothing and leaves the opponent no immediate win, cooldown
// included. Replaying the opponent's swap yields the same grid, so it never
// qualifies.
func swapBlock(s *State, legal, swaps []Move) (Move, bool) {
	mover := s.ToMove
	opp := mover.Opponent()
	if s.RemainingSwaps(opp) == 0 || !lo.ContainsBy(legal, func(m Move) bool {
		wins, _ := SwapOutcome(s, m.A, m.B, opp)
		return wins
	}) {
		return Move{}, false
	}
	for _, m := range swaps {
		if _, gifts := SwapOutcome(s, m.A, m.B, mover); gifts {
			continue
		}
		u := s.Apply(m)
		safe := !canWinNow(s)
		s.Undo(u)
		if safe {
			return m, true
		}
	}
	return Move{}, false
}

// canWinNow reports whether the side to move has a winning placement or
// swap.
func canWinNow(s *State) bool {
	side := s.ToMove
	k := s.Settings.WinLength
	for _, p := range s.EmptyCells() {
		if s.Board.winsByPlacing(k, p, side) {
			return true
		}
	}
	if s.RemainingSwaps(side) == 0 {
		return false
	}
	return lo.ContainsBy(s.LegalSwaps(), func(m Move) bool {
		wins, _ := SwapOutcome(s, m.A, m.B, side)
		return wins
	})
}

// deepen runs negamax at depth 1, 2, ... and keeps the result of the
// deepest iteration that finished before the deadline.
func (sr *Searcher) deepen(s *State, start time.Time) (Decision, bool) {
	sr.deadline = start.Add(sr.cfg.TimeBudget)
	maxDepth := sr.cfg.maxDepth(s.Settings)
	var best Decision
	found := false
	for depth := 1; depth <= maxDepth; depth++ {
		score, move, ok := sr.negamax(s, depth, math.Inf(-1), math.Inf(1))
		if !ok {
			sr.stats.Timeouts++
			log.Debug().Int("depth", depth).Int("nodes", sr.stats.Nodes).Msg("search-depth-timed-out")
			break
		}
		if move.IsZero() {
			continue
		}
		best = Decision{Move: move, Reason: ReasonSearch, Depth: depth, Score: score}
		found = true
		log.Debug().
			Int("depth", depth).
			Str("best", move.String()).
			Float64("score", score).
			Int("nodes", sr.stats.Nodes).
			Msg("search-depth-completed")
		if sr.observer != nil {
			sr.observer.DepthCompleted(DepthReport{
				Mover:   s.ToMove,
				Depth:   depth,
				Best:    move,
				Score:   score,
				Nodes:   sr.stats.Nodes,
				Elapsed: sr.now().Sub(start),
			})
		}
		if score >= WinScore {
			break
		}
	}
	return best, found
}

// negamax returns the score for the side to move, the best move found and
// false if the deadline passed before the node was fully searched.
func (sr *Searcher) negamax(s *State, depth int, alpha, beta float64) (float64, Move, bool) {
	if sr.timedOut() {
		return 0, Move{}, false
	}
	sr.stats.Nodes++

	alphaOrig := alpha
	key := sr.zobrist.Hash(s)
	entry, hit := sr.tt.Probe(key)
	if hit && entry.Depth >= depth {
		sr.stats.TTHits++
		switch entry.Flag {
		case TTExact:
			return entry.Score, entry.Best, true
		case TTLower:
			alpha = math.Max(alpha, entry.Score)
		case TTUpper:
			beta = math.Min(beta, entry.Score)
		}
		if alpha >= beta {
			return entry.Score, entry.Best, true
		}
	}

	if s.Board.IsFull() && s.RemainingSwaps(s.ToMove) == 0 {
		if s.RemainingSwaps(s.ToMove.Opponent()) == 0 {
			return 0, Move{}, true
		}
		if depth <= 0 {
			return sr.eval.Evaluate(s, s.ToMove), Move{}, true
		}
		u := s.Pass()
		score, _, ok := sr.negamax(s, depth-1, -beta, -alpha)
		s.Undo(u)
		return -score, Move{}, ok
	}

	if depth <= 0 {
		return sr.eval.Evaluate(s, s.ToMove), Move{}, true
	}

	mover := s.ToMove
	moves := sr.gen.Moves(s, mover)
	if len(moves) == 0 {
		return 0, Move{}, true
	}
	if hit && !entry.Best.IsZero() {
		moves = promote(moves, entry.Best)
	}

	best := moves[0]
	bestScore := math.Inf(-1)
	for _, m := range moves {
		if sr.timedOut() {
			return 0, Move{}, false
		}
		u := s.Apply(m)
		var score float64
		switch s.Resolve(m, mover) {
		case MoverWins:
			score = WinScore + float64(depth)
		case OpponentWins:
			score = -WinScore - float64(depth)
		default:
			if s.IsDraw() {
				score = 0
				break
			}
			child, _, ok := sr.negamax(s, depth-1, -beta, -alpha)
			if !ok {
				s.Undo(u)
				return 0, Move{}, false
			}
			score = -child
		}
		s.Undo(u)

		if score > bestScore {
			bestScore = score
			best = m
		}
		alpha = math.Max(alpha, score)
		if alpha >= beta {
			sr.stats.Cutoffs++
			break
		}
	}

	flag := TTExact
	switch {
	case bestScore <= alphaOrig:
		flag = TTUpper
	case bestScore >= beta:
		flag = TTLower
	}
	sr.tt.Store(key, depth, bestScore, flag, best)
	return bestScore, best, true
}

// promote moves first to the front, keeping the order of the rest.
func promote(moves []Move, first Move) []Move {
	for i, m := range moves {
		if !m.Equals(first) {
			continue
		}
		if i == 0 {
			return moves
		}
		copy(moves[1:i+1], moves[:i])
		moves[0] = m
		return moves
	}
	return moves
}
