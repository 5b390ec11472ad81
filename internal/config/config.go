package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

const envPrefix = "SLOTPLAYER_"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.slotplayerrc, $XDG_CONFIG_HOME/slotplayer/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Path returns the config file Load would read, or the preferred location
// if none exists yet.
func Path() string {
	if p := findConfigFile(); p != "" {
		return p
	}
	paths := searchPaths()
	if len(paths) == 0 {
		return ""
	}
	return paths[len(paths)-1]
}

func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".slotplayerrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "slotplayer", "config.toml"))
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envInt(name string, dst *int) {
	if v := os.Getenv(envPrefix + name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*dst = v
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Player
	envInt("PLAYER_SLOTS", &cfg.Player.Slots)
	envString("PLAYER_FOLDER", &cfg.Player.Folder)

	// OSC
	envInt("OSC_PORT", &cfg.OSC.Port)
	envString("OSC_OUT", &cfg.OSC.Out)

	// Engine
	envString("ENGINE_BACKEND", &cfg.Engine.Backend)
	envString("ENGINE_MPV_PATH", &cfg.Engine.MPVPath)
	envInt("ENGINE_FPS", &cfg.Engine.FPS)
	if v := os.Getenv(envPrefix + "ENGINE_CLOCK_DURATION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.ClockDuration = f
		}
	}

	// Status
	envString("STATUS_ADDR", &cfg.Status.Addr)

	// TUI
	if v := os.Getenv(envPrefix + "TUI_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.TUI.Enabled = b
		}
	}
	envString("TUI_THEME", &cfg.TUI.Theme)

	// Log
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_FILE", &cfg.Log.File)
}
