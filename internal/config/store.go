package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/swaptoe/swaptoe/internal/engine"
)

var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning is the part of the configuration that can change while the
// server runs.
type Tuning struct {
	Search     engine.SearchConfig `json:"search"`
	Heuristics engine.Heuristics   `json:"heuristics"`
}

func (t Tuning) Validate() error {
	s := t.Search
	switch {
	case s.TimeBudget < 0:
		return fmt.Errorf("%w: negative time budget", ErrInvalidTuning)
	case s.MaxDepthSmall < 1 || s.MaxDepthLarge < 1:
		return fmt.Errorf("%w: max depth must be at least 1", ErrInvalidTuning)
	case s.MaxPlaceMoves < 1 || s.MaxSwapMoves < 1:
		return fmt.Errorf("%w: move caps must be at least 1", ErrInvalidTuning)
	case s.TTMaxEntries < 2:
		return fmt.Errorf("%w: transposition table needs at least 2 entries", ErrInvalidTuning)
	case len(t.Heuristics.LineWeights) < 2:
		return fmt.Errorf("%w: need weights for at least one mark", ErrInvalidTuning)
	case t.Heuristics.GrowthFactor <= 0:
		return fmt.Errorf("%w: growth factor must be positive", ErrInvalidTuning)
	}
	return nil
}

type SettingsStore struct {
	mu     sync.RWMutex
	tuning Tuning
}

func NewSettingsStore(t Tuning) *SettingsStore {
	return &SettingsStore{tuning: t}
}

func (s *SettingsStore) Get() Tuning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.tuning
	t.Heuristics.LineWeights = append([]float64(nil), t.Heuristics.LineWeights...)
	return t
}

// Update replaces the live tuning if t is valid.
func (s *SettingsStore) Update(t Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.tuning = t
	s.mu.Unlock()
	return nil
}
