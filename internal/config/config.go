// Package config loads server and engine settings from defaults, an
// optional config file and SWAPTOE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/swaptoe/swaptoe/internal/engine"
)

const (
	ConfigFile              = "config-file"
	ConfigLogLevel          = "log-level"
	ConfigAddr              = "addr"
	ConfigPreset            = "preset"
	ConfigMode              = "mode"
	ConfigComputerMark      = "computer-mark"
	ConfigComputerDelay     = "computer-delay"
	ConfigTickInterval      = "tick-interval"
	ConfigHeartbeatInterval = "heartbeat-interval"
	ConfigShutdownTimeout   = "shutdown-timeout"

	ConfigSearchTimeBudget      = "search.time_budget"
	ConfigSearchMaxDepthSmall   = "search.max_depth_small"
	ConfigSearchMaxDepthLarge   = "search.max_depth_large"
	ConfigSearchSmallBoardCells = "search.small_board_cells"
	ConfigSearchMaxPlaceMoves   = "search.max_place_moves"
	ConfigSearchMaxSwapMoves    = "search.max_swap_moves"
	ConfigSearchTTMaxEntries    = "search.tt_max_entries"

	ConfigHeuristicsLineWeights     = "heuristics.line_weights"
	ConfigHeuristicsGrowthFactor    = "heuristics.growth_factor"
	ConfigHeuristicsCompleteLine    = "heuristics.complete_line"
	ConfigHeuristicsOpenBoth        = "heuristics.open_both"
	ConfigHeuristicsOpenOne         = "heuristics.open_one"
	ConfigHeuristicsClosed          = "heuristics.closed"
	ConfigHeuristicsForkBonus       = "heuristics.fork_bonus"
	ConfigHeuristicsForkPenalty     = "heuristics.fork_penalty"
	ConfigHeuristicsSwapWinBonus    = "heuristics.swap_win_bonus"
	ConfigHeuristicsSwapGiftPenalty = "heuristics.swap_gift_penalty"

	ConfigSelfPlayGames    = "selfplay.games"
	ConfigSelfPlayParallel = "selfplay.parallel"
	ConfigSelfPlayOpening  = "selfplay.opening_moves"
	ConfigSelfPlayMaxMoves = "selfplay.max_moves"
	ConfigSelfPlayRival    = "selfplay.rival_heuristics"
)

type Config struct {
	*viper.Viper
}

func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.SetEnvPrefix("swaptoe")
	c.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.AutomaticEnv()

	c.SetDefault(ConfigFile, "")
	c.SetDefault(ConfigLogLevel, "info")
	c.SetDefault(ConfigAddr, ":8080")
	c.SetDefault(ConfigPreset, "3x3")
	c.SetDefault(ConfigMode, "pvc")
	c.SetDefault(ConfigComputerMark, "O")
	c.SetDefault(ConfigComputerDelay, 220*time.Millisecond)
	c.SetDefault(ConfigTickInterval, 50*time.Millisecond)
	c.SetDefault(ConfigHeartbeatInterval, 30*time.Second)
	c.SetDefault(ConfigShutdownTimeout, 5*time.Second)

	sc := engine.DefaultSearchConfig()
	c.SetDefault(ConfigSearchTimeBudget, sc.TimeBudget)
	c.SetDefault(ConfigSearchMaxDepthSmall, sc.MaxDepthSmall)
	c.SetDefault(ConfigSearchMaxDepthLarge, sc.MaxDepthLarge)
	c.SetDefault(ConfigSearchSmallBoardCells, sc.SmallBoardCells)
	c.SetDefault(ConfigSearchMaxPlaceMoves, sc.MaxPlaceMoves)
	c.SetDefault(ConfigSearchMaxSwapMoves, sc.MaxSwapMoves)
	c.SetDefault(ConfigSearchTTMaxEntries, sc.TTMaxEntries)

	h := engine.DefaultHeuristics()
	c.SetDefault(ConfigHeuristicsLineWeights, h.LineWeights)
	c.SetDefault(ConfigHeuristicsGrowthFactor, h.GrowthFactor)
	c.SetDefault(ConfigHeuristicsCompleteLine, h.CompleteLine)
	c.SetDefault(ConfigHeuristicsOpenBoth, h.OpenBoth)
	c.SetDefault(ConfigHeuristicsOpenOne, h.OpenOne)
	c.SetDefault(ConfigHeuristicsClosed, h.Closed)
	c.SetDefault(ConfigHeuristicsForkBonus, h.ForkBonus)
	c.SetDefault(ConfigHeuristicsForkPenalty, h.ForkPenalty)
	c.SetDefault(ConfigHeuristicsSwapWinBonus, h.SwapWinBonus)
	c.SetDefault(ConfigHeuristicsSwapGiftPenalty, h.SwapGiftPenalty)

	c.SetDefault(ConfigSelfPlayGames, 20)
	c.SetDefault(ConfigSelfPlayParallel, 4)
	c.SetDefault(ConfigSelfPlayOpening, 2)
	c.SetDefault(ConfigSelfPlayMaxMoves, 400)
	c.SetDefault(ConfigSelfPlayRival, "")
	return c
}

// BindFlags parses command-line args into c. Flags win over the
// environment and the config file.
func (c *Config) BindFlags(name string, args []string) error {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String(ConfigFile, c.GetString(ConfigFile), "config file (yaml, toml or json)")
	fs.String(ConfigLogLevel, c.GetString(ConfigLogLevel), "log level")
	fs.String(ConfigAddr, c.GetString(ConfigAddr), "listen address")
	fs.String(ConfigPreset, c.GetString(ConfigPreset), "board preset")
	fs.String(ConfigMode, c.GetString(ConfigMode), "pvp, pvc or cvc")
	fs.String(ConfigComputerMark, c.GetString(ConfigComputerMark), "mark played by the computer in pvc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.BindPFlags(fs)
}

// Load reads path if given, otherwise an optional swaptoe.{yaml,toml,json}
// in the working directory. A missing default file is not an error.
func (c *Config) Load(path string) error {
	if path != "" {
		c.SetConfigFile(path)
	} else {
		c.SetConfigName("swaptoe")
		c.AddConfigPath(".")
	}
	err := c.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !(path == "" && errors.As(err, &notFound)) {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func (c *Config) SearchConfig() engine.SearchConfig {
	return engine.SearchConfig{
		TimeBudget:      c.GetDuration(ConfigSearchTimeBudget),
		MaxDepthSmall:   c.GetInt(ConfigSearchMaxDepthSmall),
		MaxDepthLarge:   c.GetInt(ConfigSearchMaxDepthLarge),
		SmallBoardCells: c.GetInt(ConfigSearchSmallBoardCells),
		MaxPlaceMoves:   c.GetInt(ConfigSearchMaxPlaceMoves),
		MaxSwapMoves:    c.GetInt(ConfigSearchMaxSwapMoves),
		TTMaxEntries:    c.GetInt(ConfigSearchTTMaxEntries),
	}
}

func (c *Config) Heuristics() (engine.Heuristics, error) {
	h := engine.Heuristics{
		GrowthFactor:    c.GetFloat64(ConfigHeuristicsGrowthFactor),
		CompleteLine:    c.GetFloat64(ConfigHeuristicsCompleteLine),
		OpenBoth:        c.GetFloat64(ConfigHeuristicsOpenBoth),
		OpenOne:         c.GetFloat64(ConfigHeuristicsOpenOne),
		Closed:          c.GetFloat64(ConfigHeuristicsClosed),
		ForkBonus:       c.GetFloat64(ConfigHeuristicsForkBonus),
		ForkPenalty:     c.GetFloat64(ConfigHeuristicsForkPenalty),
		SwapWinBonus:    c.GetFloat64(ConfigHeuristicsSwapWinBonus),
		SwapGiftPenalty: c.GetFloat64(ConfigHeuristicsSwapGiftPenalty),
	}
	// accepts a list from a file or "0,2,10,..." from the environment
	if err := c.UnmarshalKey(ConfigHeuristicsLineWeights, &h.LineWeights); err != nil {
		return engine.Heuristics{}, fmt.Errorf("%s: %w", ConfigHeuristicsLineWeights, err)
	}
	return h, nil
}

func (c *Config) Tuning() (Tuning, error) {
	h, err := c.Heuristics()
	if err != nil {
		return Tuning{}, err
	}
	t := Tuning{Search: c.SearchConfig(), Heuristics: h}
	return t, t.Validate()
}

func (c *Config) ComputerMark() (engine.Mark, error) {
	return engine.ParseMark(c.GetString(ConfigComputerMark))
}
