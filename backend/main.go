package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
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
	if err := cfg.BindFlags("swaptoe", os.Args[1:]); err != nil {
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

	srv, err := newServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("server-setup-failed")
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if err := run(sigCtx, cfg, srv); err != nil {
		log.Fatal().Err(err).Msg("server-exited")
	}
	log.Info().Msg("server-stopped")
}

func newServer(cfg *config.Config) (*server, error) {
	tuning, err := cfg.Tuning()
	if err != nil {
		return nil, err
	}
	setup := game.DefaultSetup()
	if setup.Settings, err = game.PresetByName(cfg.GetString(config.ConfigPreset)); err != nil {
		return nil, err
	}
	if setup.Mode, err = game.ParseMode(cfg.GetString(config.ConfigMode)); err != nil {
		return nil, err
	}
	if setup.ComputerMark, err = cfg.ComputerMark(); err != nil {
		return nil, err
	}

	hub := NewHub()
	searcher := engine.NewSearcher(tuning.Search, tuning.Heuristics)
	searcher.SetObserver(hub)
	g, err := game.NewGame(setup, searcher)
	if err != nil {
		return nil, err
	}
	g.SetObserver(hub)

	return &server{
		controller: game.NewController(g, cfg.GetDuration(config.ConfigComputerDelay)),
		hub:        hub,
		store:      config.NewSettingsStore(tuning),
		heartbeat:  cfg.GetDuration(config.ConfigHeartbeatInterval),
	}, nil
}

// run serves HTTP, fans out events and drives computer moves until ctx is
// cancelled or one of them fails.
func run(ctx context.Context, cfg *config.Config, srv *server) error {
	httpServer := &http.Server{
		Addr:    cfg.GetString(config.ConfigAddr),
		Handler: srv.routes(),
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.hub.Run(ctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.GetDuration(config.ConfigTickInterval))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				srv.controller.Tick()
			}
		}
	})
	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("server-listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("server-shutting-down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetDuration(config.ConfigShutdownTimeout))
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("graceful-shutdown-failed")
			return httpServer.Close()
		}
		return nil
	})
	return g.Wait()
}
