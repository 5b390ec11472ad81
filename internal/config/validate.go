package config

import (
	"errors"
	"fmt"

	perrors "github.com/tessro/slotplayer/internal/errors"
	"github.com/tessro/slotplayer/internal/osc"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	if err := c.OSC.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("osc: %w", err))
	}
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", perrors.ErrInvalidConfig, errors.Join(errs...))
}

// Validate checks PlayerConfig for errors.
func (c *PlayerConfig) Validate() error {
	if c.Slots < 1 {
		return errors.New("slots must be at least 1")
	}
	return nil
}

// Validate checks OSCConfig for errors.
func (c *OSCConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Out != "" {
		if _, err := osc.ParseEndpoint(c.Out); err != nil {
			return fmt.Errorf("invalid out: %w", err)
		}
	}
	return nil
}

// Validate checks EngineConfig for errors.
func (c *EngineConfig) Validate() error {
	switch c.Backend {
	case "", BackendClock, BackendMPV:
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be clock or mpv)", c.Backend)
	}
	if c.FPS < 0 {
		return errors.New("fps must be non-negative")
	}
	if c.ClockDuration < 0 {
		return errors.New("clock_duration must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
