// Command selfplay pits two evaluator settings against each other over a
// suite of random openings, each opening played once with either side
// moving first.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/swaptoe/swaptoe/internal/config"
	"github.com/swaptoe/swaptoe/internal/engine"
	"github.com/swaptoe/swaptoe/internal/game"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	cfg := config.DefaultConfig()
	if err := cfg.BindFlags("selfplay", os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	if err := cfg.Load(cfg.GetString(config.ConfigFile)); err != nil {
		log.Fatal().Err(err).Msg("config-load-failed")
	}
	level, err := zerolog.ParseLevel(cfg.GetString(config.ConfigLogLevel))
	if err != nil {
		log.Fatal().Err(err).Msg("bad-log-level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := run(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("selfplay-failed")
	}
	t.log()
}

func run(ctx context.Context, cfg *config.Config) (tally, error) {
	settings, err := game.PresetByName(cfg.GetString(config.ConfigPreset))
	if err != nil {
		return tally{}, err
	}
	tuning, err := cfg.Tuning()
	if err != nil {
		return tally{}, err
	}
	a := contender{Name: "a", Search: tuning.Search, Heuristics: tuning.Heuristics}
	b := a
	b.Name = "b"
	if path := cfg.GetString(config.ConfigSelfPlayRival); path != "" {
		if b.Heuristics, err = readHeuristics(path, tuning.Heuristics); err != nil {
			return tally{}, err
		}
	}

	openings := buildOpeningSuite(settings, max(1, cfg.GetInt(config.ConfigSelfPlayGames)/2), cfg.GetInt(config.ConfigSelfPlayOpening))
	maxMoves := cfg.GetInt(config.ConfigSelfPlayMaxMoves)
	log.Info().
		Int("rows", settings.Rows).
		Int("cols", settings.Cols).
		Int("win-length", settings.WinLength).
		Int("openings", len(openings)).
		Dur("time-budget", tuning.Search.TimeBudget).
		Msg("selfplay-started")

	var (
		mu sync.Mutex
		t  tally
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.GetInt(config.ConfigSelfPlayParallel)))
	for i, opening := range openings {
		for _, aFirst := range []bool{true, false} {
			x, o := a, b
			if !aFirst {
				x, o = b, a
			}
			g.Go(func() error {
				res, err := playGame(ctx, settings, x, o, opening, maxMoves)
				if err != nil && !errors.Is(err, errMoveLimit) {
					return fmt.Errorf("opening %d: %w", i, err)
				}
				log.Debug().
					Int("opening", i).
					Str("x", x.Name).
					Str("winner", res.Winner.String()).
					Int("moves", res.Moves).
					Msg("selfplay-game-finished")
				mu.Lock()
				t.add(res, aFirst)
				mu.Unlock()
				return nil
			})
		}
	}
	return t, g.Wait()
}

// readHeuristics overlays the JSON object at path onto base.
func readHeuristics(path string, base engine.Heuristics) (engine.Heuristics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Heuristics{}, err
	}
	h := base
	h.LineWeights = append([]float64(nil), base.LineWeights...)
	if err := json.Unmarshal(data, &h); err != nil {
		return engine.Heuristics{}, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}
