package game

import (
	"errors"
	"fmt"

	"github.com/swaptoe/swaptoe/internal/engine"
)

var (
	ErrUnknownMode   = errors.New("unknown mode")
	ErrUnknownPreset = errors.New("unknown preset")
)

type Mode string

const (
	ModePvP Mode = "pvp"
	ModePvC Mode = "pvc"
	ModeCvC Mode = "cvc"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePvP, ModePvC, ModeCvC:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Plays reports whether the computer moves for mark in this mode.
func (m Mode) Plays(computer, mark engine.Mark) bool {
	switch m {
	case ModeCvC:
		return true
	case ModePvC:
		return mark == computer
	}
	return false
}

type Preset struct {
	Name     string          `json:"name"`
	Settings engine.Settings `json:"settings"`
}

const DefaultSwapLimit = 10

var Presets = []Preset{
	{"3x3", engine.Settings{Rows: 3, Cols: 3, WinLength: 3, SwapLimitAfterFull: DefaultSwapLimit}},
	{"5x5", engine.Settings{Rows: 5, Cols: 5, WinLength: 4, SwapLimitAfterFull: DefaultSwapLimit}},
	{"10x10", engine.Settings{Rows: 10, Cols: 10, WinLength: 5, SwapLimitAfterFull: DefaultSwapLimit}},
	{"15x15", engine.Settings{Rows: 15, Cols: 15, WinLength: 5, SwapLimitAfterFull: DefaultSwapLimit}},
}

func PresetByName(name string) (engine.Settings, error) {
	for _, p := range Presets {
		if p.Name == name {
			return p.Settings, nil
		}
	}
	return engine.Settings{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Setup is everything Configure needs to start a game.
type Setup struct {
	Settings     engine.Settings `json:"settings"`
	Mode         Mode            `json:"mode"`
	ComputerMark engine.Mark     `json:"computer_mark"`
}

func DefaultSetup() Setup {
	return Setup{Settings: Presets[0].Settings, Mode: ModePvC, ComputerMark: engine.O}
}

func (s Setup) Validate() error {
	if err := s.Settings.Validate(); err != nil {
		return err
	}
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if s.Mode == ModePvC && s.ComputerMark != engine.X && s.ComputerMark != engine.O {
		return fmt.Errorf("%w: computer mark must be X or O", engine.ErrInvalidSettings)
	}
	return nil
}
