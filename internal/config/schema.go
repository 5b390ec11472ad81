package config

// Config is the root configuration structure.
type Config struct {
	Player PlayerConfig `toml:"player"`
	OSC    OSCConfig    `toml:"osc"`
	Engine EngineConfig `toml:"engine"`
	Status StatusConfig `toml:"status"`
	TUI    TUIConfig    `toml:"tui"`
	Log    LogConfig    `toml:"log"`
}

// PlayerConfig holds slot settings.
type PlayerConfig struct {
	Slots  int    `toml:"slots"`
	Folder string `toml:"folder"`
}

// OSCConfig holds the inbound port and the optional notification endpoint.
type OSCConfig struct {
	Port int    `toml:"port"`
	Out  string `toml:"out"`
}

// EngineConfig selects and tunes the playback engine.
type EngineConfig struct {
	Backend       string  `toml:"backend"`
	MPVPath       string  `toml:"mpv_path"`
	FPS           int     `toml:"fps"`
	ClockDuration float64 `toml:"clock_duration"`
}

// StatusConfig holds the HTTP status endpoint settings.
type StatusConfig struct {
	Addr string `toml:"addr"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Enabled bool   `toml:"enabled"`
	Theme   string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
