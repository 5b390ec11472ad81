package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tessro/slotplayer/internal/app"
	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/status"
	"github.com/tessro/slotplayer/internal/tail"
	"github.com/tessro/slotplayer/internal/tui"
)

const (
	logRingSize   = 500
	keyBuffer     = 8
	watcherBuffer = 64
)

func runPlayer(cmd *cobra.Command, args []string) error {
	if flagManual {
		return printManual(cmd.OutOrStdout())
	}

	useTUI := cfg.TUI.Enabled && term.IsTerminal(int(os.Stdout.Fd()))

	var ring *app.LogRing
	var console io.Writer = os.Stderr
	if useTUI {
		ring = app.NewLogRing(logRingSize)
		console = ring
	}

	log, closer, err := app.NewLogger(cfg.Log, console)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	if cfg.TUI.Enabled && !useTUI {
		log.Warn().Msg("stdout is not a terminal, monitor disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	latest := &core.LatestSnapshot{}
	opts := []app.Option{app.WithObserver(latest), app.WithoutSignals()}

	var (
		keys    chan core.Key
		watcher *tail.Watcher
	)
	if useTUI {
		keys = make(chan core.Key, keyBuffer)
		watcher = tail.NewWatcher(watcherBuffer)
		opts = append(opts,
			app.WithKeys(keys),
			app.WithObserver(watcher),
			app.WithDumpWriter(ring),
		)
	}

	a, err := app.New(cfg, log, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if cfg.Status.Addr != "" {
		srv := status.NewServer(cfg.Status.Addr, latest, log)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.Error().Err(err).Str("address", cfg.Status.Addr).Msg("status endpoint failed")
			}
		}()
	}

	if !useTUI {
		return a.Run(ctx)
	}
	return runWithMonitor(ctx, a, log, tui.Options{
		Latest: latest,
		Keys:   keys,
		Events: watcher.Events(),
		Logs:   ring,
		Header: fmt.Sprintf("osc :%d  %s", a.Port(), cfg.Engine.Backend),
		Theme:  cfg.TUI.Theme,
	}, watcher)
}

// runWithMonitor runs the tick loop in the background and the monitor in
// the foreground. Whichever finishes first stops the other.
func runWithMonitor(ctx context.Context, a *app.App, log zerolog.Logger, opts tui.Options, watcher *tail.Watcher) error {
	appCtx, cancelApp := context.WithCancel(ctx)
	defer cancelApp()
	tuiCtx, cancelTUI := context.WithCancel(ctx)
	defer cancelTUI()

	appErr := make(chan error, 1)
	go func() {
		appErr <- a.Run(appCtx)
		watcher.Close()
		cancelTUI()
	}()

	err := tui.Run(tuiCtx, opts)
	cancelApp()

	if aerr := <-appErr; aerr != nil {
		return aerr
	}
	if err != nil {
		log.Error().Err(err).Msg("monitor failed")
	}
	return err
}
