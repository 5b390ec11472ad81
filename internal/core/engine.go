package core

// Engine opens clips for playback. Each opened Movie is independent; the
// player drives at most one of them per tick.
type Engine interface {
	// Open prepares the clip at path. It must not start playback.
	Open(path string) (Movie, error)
}

// Movie is a single loaded clip as seen by the playback engine.
type Movie interface {
	Path() string

	// Playback control
	Play()
	Stop()
	SetPaused(paused bool)
	SetSpeed(speed float64)
	// SetPosition seeks to a fractional position, 0 is the start and 1 the end.
	SetPosition(pos float64)

	// State queries
	Duration() float64
	Position() float64
	IsDone() bool

	// Update advances the engine's clock by one tick.
	Update()

	// Close releases every resource tied to the clip.
	Close() error
}

// Fullscreener is implemented by movies that can toggle a fullscreen surface.
type Fullscreener interface {
	ToggleFullscreen()
}
