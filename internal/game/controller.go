package game

import (
	"sync"
	"time"

	"github.com/swaptoe/swaptoe/internal/engine"
)

// Controller serialises access to a Game for concurrent callers and paces
// computer moves.
type Controller struct {
	mu       sync.Mutex
	game     *Game
	delay    time.Duration
	lastMove time.Time
	now      func() time.Time
}

func NewController(g *Game, computerDelay time.Duration) *Controller {
	return &Controller{game: g, delay: computerDelay, now: time.Now}
}

func (gc *Controller) Configure(setup Setup) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.game.Configure(setup); err != nil {
		return err
	}
	gc.lastMove = gc.now()
	return nil
}

func (gc *Controller) Restart() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Restart()
	gc.lastMove = gc.now()
}

func (gc *Controller) Place(p engine.Pos) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.game.RequestPlace(p); err != nil {
		return err
	}
	gc.lastMove = gc.now()
	return nil
}

func (gc *Controller) Swap(a, b engine.Pos) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.game.RequestSwap(a, b); err != nil {
		return err
	}
	gc.lastMove = gc.now()
	return nil
}

func (gc *Controller) AgreeDraw() error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.AgreeDraw()
}

// Tick plays one computer move if the computer is to move and the pacing
// delay since the previous move has passed. It reports whether it moved.
func (gc *Controller) Tick() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.game.IsComputerTurn() {
		return false
	}
	if gc.now().Sub(gc.lastMove) < gc.delay {
		return false
	}
	if _, err := gc.game.RequestComputerMove(); err != nil {
		return false
	}
	gc.lastMove = gc.now()
	return true
}

func (gc *Controller) Snapshot() Snapshot {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Snapshot()
}

func (gc *Controller) History() History {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History()
}

func (gc *Controller) Setup() Setup {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Setup()
}

// Retune applies new search limits and weights from the next computer move
// on.
func (gc *Controller) Retune(cfg engine.SearchConfig, h engine.Heuristics) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.searcher.Reconfigure(cfg, h)
}

func (gc *Controller) TableStats() (engine.TTStats, int, int) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	tt := gc.game.searcher.Table()
	return tt.Stats(), tt.Count(), tt.Capacity()
}

func (gc *Controller) ClearTable() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.searcher.Table().Clear()
}
