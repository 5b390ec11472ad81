package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tessro/slotplayer/internal/osc"
	"github.com/tessro/slotplayer/internal/tail"
)

var (
	listenPort      int
	listenNoEmoji   bool
	listenTimestamp bool
	listenFormat    string
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print clip notifications sent by a player",
	Long: `Listen for /clipinfo notifications and print them as they arrive.

Point a player at this port with --oscout. Events printed:
  - Clip loaded into a slot
  - Clip replaced (a slot was reloaded with another file)

Template fields for --format: .Type .Emoji .Time .Slot .Path .Name .Duration`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().IntVarP(&listenPort, "port", "p", 0, "UDP port to listen on (default: port of osc.out)")
	listenCmd.Flags().BoolVar(&listenNoEmoji, "no-emoji", false, "disable emoji output")
	listenCmd.Flags().BoolVarP(&listenTimestamp, "timestamp", "t", false, "show timestamps")
	listenCmd.Flags().StringVarP(&listenFormat, "format", "f", "", "custom format template")
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, args []string) error {
	port := listenPort
	if port == 0 && cfg.OSC.Out != "" {
		ep, err := osc.ParseEndpoint(cfg.OSC.Out)
		if err != nil {
			return err
		}
		port = ep.Port
	}
	if port == 0 {
		return fmt.Errorf("no port to listen on: pass --port or set osc.out")
	}

	level := zerolog.WarnLevel
	if Verbose() {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	formatter := tail.NewFormatter(
		tail.WithEmoji(!listenNoEmoji),
		tail.WithTimestamp(listenTimestamp),
		tail.WithTemplate(listenFormat),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recv, err := osc.Listen(fmt.Sprintf(":%d", port), 0, log)
	if err != nil {
		return err
	}
	defer func() { _ = recv.Close() }()

	errCh := make(chan error, 1)
	go func() {
		errCh <- recv.Serve(ctx)
	}()

	if Verbose() {
		fmt.Fprintf(os.Stderr, "Listening on :%d\n", recv.Port())
	}

	events := tail.Listen(ctx, recv.Messages(), func(msg osc.Message, err error) {
		log.Debug().Str("address", msg.Address).Err(err).Msg("ignored message")
	})

	out := cmd.OutOrStdout()
	for event := range events {
		if JSONOutput() {
			_ = printJSON(out, event.Clip)
			continue
		}
		fmt.Fprintln(out, formatter.Format(event))
	}

	return <-errCh
}
