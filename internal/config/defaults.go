package config

// Engine backends.
const (
	BackendClock = "clock"
	BackendMPV   = "mpv"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			Slots: 50,
		},
		OSC: OSCConfig{
			Port: 30003,
		},
		Engine: EngineConfig{
			Backend:       BackendClock,
			MPVPath:       "mpv",
			FPS:           60,
			ClockDuration: 10,
		},
		TUI: TUIConfig{
			Theme: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Player
	if c.Player.Slots == 0 {
		c.Player.Slots = d.Player.Slots
	}

	// OSC
	if c.OSC.Port == 0 {
		c.OSC.Port = d.OSC.Port
	}

	// Engine
	if c.Engine.Backend == "" {
		c.Engine.Backend = d.Engine.Backend
	}
	if c.Engine.MPVPath == "" {
		c.Engine.MPVPath = d.Engine.MPVPath
	}
	if c.Engine.FPS == 0 {
		c.Engine.FPS = d.Engine.FPS
	}
	if c.Engine.ClockDuration == 0 {
		c.Engine.ClockDuration = d.Engine.ClockDuration
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
