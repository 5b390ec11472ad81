// Package clock provides a headless playback engine. Movies have no decoder;
// their position is a clock advanced by one frame per Update.
package clock

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/tessro/slotplayer/internal/core"
)

// DefaultFPS is the frame rate assumed when none is configured.
const DefaultFPS = 60

// DefaultDuration is the clip length in seconds used when none can be probed.
const DefaultDuration = 10

// DurationFunc returns the length of the clip at path in seconds.
type DurationFunc func(path string) (float64, error)

// Engine opens clock-driven movies.
type Engine struct {
	fps          float64
	fallback     float64
	probe        DurationFunc
	requireFiles bool
	log          zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithFPS sets the number of Update calls per second of playback.
func WithFPS(fps float64) Option {
	return func(e *Engine) {
		if fps > 0 {
			e.fps = fps
		}
	}
}

// WithDefaultDuration sets the duration reported when the probe fails or is unset.
func WithDefaultDuration(seconds float64) Option {
	return func(e *Engine) {
		e.fallback = seconds
	}
}

// WithProbe sets the duration probe.
func WithProbe(fn DurationFunc) Option {
	return func(e *Engine) {
		e.probe = fn
	}
}

// WithoutFileCheck lets Open accept paths that do not exist.
func WithoutFileCheck() Option {
	return func(e *Engine) {
		e.requireFiles = false
	}
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates a clock engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		fps:          DefaultFPS,
		fallback:     DefaultDuration,
		requireFiles: true,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open implements core.Engine.
func (e *Engine) Open(path string) (core.Movie, error) {
	if e.requireFiles {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
	}

	duration := e.fallback
	if e.probe != nil {
		d, err := e.probe(path)
		if err != nil {
			e.log.Debug().Err(err).Str("path", path).Msg("duration probe failed, using default")
		} else {
			duration = d
		}
	}

	return &Movie{
		path:     path,
		duration: duration,
		fps:      e.fps,
		speed:    1,
	}, nil
}

// Movie is a clip whose playhead is advanced by Update.
type Movie struct {
	path     string
	duration float64
	fps      float64

	playing  bool
	paused   bool
	speed    float64
	position float64
	closed   bool
}

var _ core.Movie = (*Movie)(nil)

func (m *Movie) Path() string { return m.path }

// Play starts playback. A finished clip restarts from the beginning.
func (m *Movie) Play() {
	if m.IsDone() {
		m.position = 0
	}
	m.playing = true
	m.paused = false
}

// Stop halts playback and rewinds.
func (m *Movie) Stop() {
	m.playing = false
	m.paused = false
	m.position = 0
}

func (m *Movie) SetPaused(paused bool) { m.paused = paused }
func (m *Movie) SetSpeed(speed float64) { m.speed = speed }

// SetPosition seeks to pos, bounded to [0, 1].
func (m *Movie) SetPosition(pos float64) {
	m.position = min(max(pos, 0), 1)
}

func (m *Movie) Duration() float64 { return m.duration }
func (m *Movie) Position() float64 { return m.position }
func (m *Movie) Speed() float64    { return m.speed }
func (m *Movie) IsPaused() bool    { return m.paused }
func (m *Movie) IsPlaying() bool   { return m.playing }

// IsDone reports whether the playhead reached the end in its direction of travel.
func (m *Movie) IsDone() bool {
	if m.speed < 0 {
		return m.position <= 0 && m.playing
	}
	return m.position >= 1
}

// Update advances the playhead by one frame.
func (m *Movie) Update() {
	if !m.playing || m.paused || m.closed || m.duration <= 0 {
		return
	}
	m.position += m.speed / (m.fps * m.duration)
	m.position = min(max(m.position, 0), 1)
}

// Close marks the movie released. Later calls are ignored.
func (m *Movie) Close() error {
	m.playing = false
	m.closed = true
	return nil
}
