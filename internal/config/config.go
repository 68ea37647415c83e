// Package config holds the engine configuration.
// Values are loaded from a YAML file so each game can tune the engine without
// recompiling; anything the file leaves out keeps its default.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Action names understood by the input bindings.
const (
	ActionMoveUp    = "move_up"
	ActionMoveDown  = "move_down"
	ActionMoveLeft  = "move_left"
	ActionMoveRight = "move_right"
	ActionQuit      = "quit"
)

// KnownActions lists every action name a binding may target.
var KnownActions = []string{ActionMoveUp, ActionMoveDown, ActionMoveLeft, ActionMoveRight, ActionQuit}

// Config holds all engine settings
type Config struct {
	Window WindowConfig `yaml:"window"`
	Loop   LoopConfig   `yaml:"loop"`
	Input  InputConfig  `yaml:"input"`
	Assets AssetsConfig `yaml:"assets"`
	Log    LogConfig    `yaml:"log"`
}

// WindowConfig defines the game window
type WindowConfig struct {
	Width     int    `yaml:"width"`     // Logical screen width in pixels
	Height    int    `yaml:"height"`    // Logical screen height in pixels
	Title     string `yaml:"title"`     // Window title
	Resizable bool   `yaml:"resizable"` // Allow the user to resize the window
}

// LoopConfig defines main loop timing
type LoopConfig struct {
	TPS int `yaml:"tps"` // Logic ticks per second
}

// InputConfig maps action names to key names (e.g. "W", "ArrowUp").
type InputConfig struct {
	Bindings map[string][]string `yaml:"bindings"`
}

// AssetsConfig defines asset loading behaviour
type AssetsConfig struct {
	Workers int `yaml:"workers"` // Decoder goroutines used by preloading
}

// LogConfig defines logging output
type LogConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Format      string `yaml:"format"`      // json or console
	Development bool   `yaml:"development"` // Human friendly output with caller info
}

// DefaultConfig returns settings that fit the 20x11 example level at 64px tiles.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    704,
			Title:     "mspj",
			Resizable: true,
		},
		Loop: LoopConfig{
			TPS: 60,
		},
		Input: InputConfig{
			Bindings: map[string][]string{
				ActionMoveUp:    {"W", "ArrowUp"},
				ActionMoveDown:  {"S", "ArrowDown"},
				ActionMoveLeft:  {"A", "ArrowLeft"},
				ActionMoveRight: {"D", "ArrowRight"},
				ActionQuit:      {"Escape"},
			},
		},
		Assets: AssetsConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Development: true,
		},
	}
}

// LoadConfig loads the engine config from a YAML file.
// A missing file is not an error: the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read engine config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse engine config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid engine config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the config for values the engine cannot run with.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size: %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Loop.TPS <= 0 {
		return fmt.Errorf("invalid tps: %d", c.Loop.TPS)
	}
	if c.Assets.Workers <= 0 {
		return fmt.Errorf("invalid asset workers: %d", c.Assets.Workers)
	}
	for action, keys := range c.Input.Bindings {
		if !isKnownAction(action) {
			return fmt.Errorf("unknown input action: %s", action)
		}
		for _, k := range keys {
			if k == "" {
				return fmt.Errorf("empty key name bound to %s", action)
			}
		}
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}
	return nil
}

func isKnownAction(name string) bool {
	for _, a := range KnownActions {
		if a == name {
			return true
		}
	}
	return false
}
