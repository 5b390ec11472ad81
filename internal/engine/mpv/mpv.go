// Package mpv plays clips in mpv, one mpv process per loaded slot, driven
// through mpv's JSON IPC socket.
package mpv

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/slotplayer/internal/core"
)

// DefaultBinary is the mpv executable looked up on PATH.
const DefaultBinary = "mpv"

const (
	startTimeout = 5 * time.Second
	startPoll    = 50 * time.Millisecond
	// mpv rejects speeds below this.
	minSpeed = 0.01
)

// Engine starts mpv processes.
type Engine struct {
	binary    string
	extraArgs []string
	socketDir string
	log       zerolog.Logger
	seq       atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithBinary sets the mpv executable.
func WithBinary(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.binary = path
		}
	}
}

// WithArgs appends extra mpv command-line arguments.
func WithArgs(args ...string) Option {
	return func(e *Engine) {
		e.extraArgs = append(e.extraArgs, args...)
	}
}

// WithSocketDir sets where IPC sockets are created.
func WithSocketDir(dir string) Option {
	return func(e *Engine) {
		e.socketDir = dir
	}
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an mpv engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		binary:    DefaultBinary,
		socketDir: os.TempDir(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Available reports whether the mpv binary can be found.
func (e *Engine) Available() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("mpv not found (%s): %w", e.binary, err)
	}
	return nil
}

// args returns the mpv command line for a clip. The clip starts paused
// and stays on its last frame at the end.
func (e *Engine) args(socket, path string) []string {
	args := []string{
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
		"--force-window=yes",
		"--no-terminal",
		"--input-ipc-server=" + socket,
	}
	args = append(args, e.extraArgs...)
	return append(args, "--", path)
}

// Open implements core.Engine.
func (e *Engine) Open(path string) (core.Movie, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	socket := filepath.Join(e.socketDir,
		"slotplayer-"+strconv.Itoa(os.Getpid())+"-"+strconv.FormatUint(e.seq.Add(1), 10)+".sock")

	cmd := exec.Command(e.binary, e.args(socket, path)...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}
	e.log.Debug().Int("pid", cmd.Process.Pid).Str("socket", socket).Str("path", path).Msg("mpv started")

	m := newMovie(newClient(socket), path, e.log)
	m.cmd = cmd
	m.socket = socket

	if err := m.waitReady(startTimeout); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}

// Movie is one mpv instance holding one clip.
type Movie struct {
	ipc    *client
	path   string
	log    zerolog.Logger
	cmd    *exec.Cmd
	socket string

	duration float64
	position float64
	done     bool
	paused   bool
}

var (
	_ core.Movie        = (*Movie)(nil)
	_ core.Fullscreener = (*Movie)(nil)
)

func newMovie(c *client, path string, log zerolog.Logger) *Movie {
	return &Movie{
		ipc:    c,
		path:   path,
		log:    log.With().Str("clip", filepath.Base(path)).Logger(),
		paused: true,
	}
}

// waitReady polls until mpv reports the clip duration.
func (m *Movie) waitReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		d, err := m.ipc.getFloat("duration")
		if err == nil {
			m.duration = d
			return nil
		}
		lastErr = err
		time.Sleep(startPoll)
	}
	return fmt.Errorf("mpv not ready after %s: %w", timeout, lastErr)
}

func (m *Movie) Path() string { return m.path }

func (m *Movie) Play() {
	if m.done {
		m.seekPercent(0)
		m.done = false
	}
	m.SetPaused(false)
}

// Stop pauses and rewinds to the first frame.
func (m *Movie) Stop() {
	m.SetPaused(true)
	m.seekPercent(0)
	m.position = 0
	m.done = false
}

func (m *Movie) SetPaused(paused bool) {
	if err := m.ipc.setProperty("pause", paused); err != nil {
		m.log.Warn().Err(err).Bool("paused", paused).Msg("set pause failed")
		return
	}
	m.paused = paused
}

// SetSpeed sets the playback rate. mpv cannot play at zero or negative
// speed, so those hold the current frame instead.
func (m *Movie) SetSpeed(speed float64) {
	if speed <= 0 {
		m.log.Debug().Float64("speed", speed).Msg("unsupported speed, holding frame")
		if err := m.ipc.setProperty("speed", minSpeed); err != nil {
			m.log.Warn().Err(err).Msg("set speed failed")
		}
		m.SetPaused(true)
		return
	}
	if err := m.ipc.setProperty("speed", speed); err != nil {
		m.log.Warn().Err(err).Float64("speed", speed).Msg("set speed failed")
	}
}

func (m *Movie) SetPosition(pos float64) {
	m.seekPercent(min(max(pos, 0), 1) * 100)
	m.position = pos
}

func (m *Movie) seekPercent(pct float64) {
	if _, err := m.ipc.command("seek", pct, "absolute-percent+exact"); err != nil {
		m.log.Warn().Err(err).Float64("percent", pct).Msg("seek failed")
	}
}

func (m *Movie) Duration() float64 { return m.duration }
func (m *Movie) Position() float64 { return m.position }
func (m *Movie) IsDone() bool      { return m.done }

// Update refreshes the cached playhead from mpv. mpv runs its own clock,
// so nothing is advanced here.
func (m *Movie) Update() {
	if pct, err := m.ipc.getFloat("percent-pos"); err == nil {
		m.position = pct / 100
	}
	if eof, err := m.ipc.getBool("eof-reached"); err == nil {
		m.done = eof
	}
}

// ToggleFullscreen implements core.Fullscreener.
func (m *Movie) ToggleFullscreen() {
	if _, err := m.ipc.command("cycle", "fullscreen"); err != nil {
		m.log.Warn().Err(err).Msg("toggle fullscreen failed")
	}
}

// Close quits mpv and removes its socket.
func (m *Movie) Close() error {
	var errs []error
	if m.cmd != nil && m.cmd.Process != nil {
		if _, err := m.ipc.poll("quit"); err != nil {
			if kerr := m.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
				errs = append(errs, fmt.Errorf("kill mpv: %w", kerr))
			}
		}
		_ = m.cmd.Wait()
		m.cmd = nil
	}
	if m.socket != "" {
		if err := os.Remove(m.socket); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
		m.socket = ""
	}
	return errors.Join(errs...)
}
