// Package app wires the player together and runs its tick loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/slotplayer/internal/config"
	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/engine/clock"
	"github.com/tessro/slotplayer/internal/engine/mpv"
	perrors "github.com/tessro/slotplayer/internal/errors"
	"github.com/tessro/slotplayer/internal/osc"
	"github.com/tessro/slotplayer/internal/player"
)

// App owns the session and everything feeding it.
type App struct {
	cfg        *config.Config
	log        zerolog.Logger
	session    *player.Session
	dispatcher *player.Dispatcher
	receiver   *osc.Receiver
	keys       <-chan core.Key
	observers  []core.Observer
	signals    bool
}

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	engine    core.Engine
	keys      <-chan core.Key
	observers []core.Observer
	dump      io.Writer
	signals   bool
}

// WithEngine overrides the engine selected by the config.
func WithEngine(e core.Engine) Option {
	return func(o *appOptions) {
		o.engine = e
	}
}

// WithKeys delivers keyboard shortcuts to the tick loop.
func WithKeys(keys <-chan core.Key) Option {
	return func(o *appOptions) {
		o.keys = keys
	}
}

// WithObserver adds a snapshot observer.
func WithObserver(obs core.Observer) Option {
	return func(o *appOptions) {
		o.observers = append(o.observers, obs)
	}
}

// WithDumpWriter sets where /dump listings go.
func WithDumpWriter(w io.Writer) Option {
	return func(o *appOptions) {
		o.dump = w
	}
}

// WithoutSignals stops Run from handling SIGINT and SIGTERM itself.
func WithoutSignals() Option {
	return func(o *appOptions) {
		o.signals = false
	}
}

// NewEngine creates the engine named by the config.
func NewEngine(cfg config.EngineConfig, log zerolog.Logger) (core.Engine, error) {
	switch cfg.Backend {
	case "", config.BackendClock:
		return clock.New(
			clock.WithFPS(float64(cfg.FPS)),
			clock.WithDefaultDuration(cfg.ClockDuration),
			clock.WithLogger(log.With().Str("component", "clock").Logger()),
		), nil
	case config.BackendMPV:
		e := mpv.New(
			mpv.WithBinary(cfg.MPVPath),
			mpv.WithLogger(log.With().Str("component", "mpv").Logger()),
		)
		if err := e.Available(); err != nil {
			return nil, perrors.WithSuggestion(err, "Install mpv or set engine.mpv_path, or use --engine clock")
		}
		return e, nil
	}
	return nil, fmt.Errorf("%w: unknown engine %q", perrors.ErrInvalidConfig, cfg.Backend)
}

// New builds the session and opens the inbound OSC port.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	o := appOptions{dump: os.Stdout, signals: true}
	for _, opt := range opts {
		opt(&o)
	}

	engine := o.engine
	if engine == nil {
		e, err := NewEngine(cfg.Engine, log)
		if err != nil {
			return nil, err
		}
		engine = e
	}

	sessionOpts := []player.Option{
		player.WithLogger(log.With().Str("component", "player").Logger()),
		player.WithDumpWriter(o.dump),
	}
	if cfg.OSC.Out != "" {
		ep, err := osc.ParseEndpoint(cfg.OSC.Out)
		if err != nil {
			return nil, fmt.Errorf("%w: osc out: %w", perrors.ErrInvalidConfig, err)
		}
		log.Info().Str("endpoint", ep.String()).Msg("sending clip info notifications")
		sessionOpts = append(sessionOpts, player.WithNotifier(player.NewNotifier(osc.NewSender(ep), log)))
	}
	session := player.NewSession(cfg.Player.Slots, engine, sessionOpts...)

	receiver, err := osc.Listen(fmt.Sprintf(":%d", cfg.OSC.Port), 0, log)
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	return &App{
		cfg:        cfg,
		log:        log,
		session:    session,
		dispatcher: player.NewDispatcher(session, log.With().Str("component", "dispatcher").Logger()),
		receiver:   receiver,
		keys:       o.keys,
		observers:  o.observers,
		signals:    o.signals,
	}, nil
}

// Session returns the player session. It must only be used from the tick loop.
func (a *App) Session() *player.Session {
	return a.session
}

// Port returns the bound OSC port.
func (a *App) Port() int {
	return a.receiver.Port()
}

// Run loads the startup folder and runs the tick loop until ctx is done,
// a /quit arrives, or the quit key is pressed.
func (a *App) Run(ctx context.Context) error {
	if a.signals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
		defer stop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.receiver.Serve(ctx)
	}()

	a.log.Info().
		Int("port", a.receiver.Port()).
		Int("slots", a.session.NumSlots()).
		Str("engine", a.cfg.Engine.Backend).
		Msg("listening for OSC messages")

	if folder := a.cfg.Player.Folder; folder != "" {
		a.loadFolder(folder)
	}
	a.publish()

	err := a.loop(ctx)
	cancel()

	if serr := <-serveErr; serr != nil && err == nil {
		err = serr
	}
	if cerr := a.session.Close(); cerr != nil {
		a.log.Warn().Err(cerr).Msg("could not release clips")
	}
	a.log.Info().Msg("player stopped")
	return err
}

func (a *App) loop(ctx context.Context) error {
	fps := a.cfg.Engine.FPS
	if fps <= 0 {
		fps = clock.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	queue := a.receiver.Messages()
	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-a.keys:
			if !ok {
				a.keys = nil
				continue
			}
			if a.handleKey(k) {
				return nil
			}
		case <-ticker.C:
			if _, quit := a.dispatcher.Drain(queue); quit {
				return nil
			}
			a.session.Tick()
			a.publish()
		}
	}
}

// handleKey applies a keyboard shortcut. It returns true on quit.
func (a *App) handleKey(k core.Key) bool {
	switch k {
	case core.KeyDump:
		a.session.Dump()
	case core.KeyFullscreen:
		if !a.session.ToggleFullscreen() {
			a.log.Debug().Msg("fullscreen not available")
		}
	case core.KeyQuit:
		a.log.Info().Msg("quit requested")
		return true
	default:
		a.log.Debug().Str("key", string(rune(k))).Msg("unbound key")
	}
	return false
}

func (a *App) loadFolder(folder string) {
	result, err := a.session.LoadFolder(folder)
	if err != nil {
		ev := a.log.Error().Err(err).Str("folder", folder)
		if s := perrors.GetSuggestion(err); s != "" {
			ev = ev.Str("suggestion", s)
		}
		ev.Msg("could not load folder")
	}
	if result != nil && result.HasErrors() {
		a.log.Warn().Str("folder", folder).Msg("skipped entries: " + result.ErrorSummary())
	}
	if result != nil {
		a.log.Info().Str("folder", folder).Ints("slots", result.Data).Msg("folder loaded")
	}
}

func (a *App) publish() {
	if len(a.observers) == 0 {
		return
	}
	snap := a.session.Snapshot()
	for _, o := range a.observers {
		o.Publish(snap)
	}
}

// Close releases the OSC port. Run closes it on return.
func (a *App) Close() error {
	if err := a.receiver.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
