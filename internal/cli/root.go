package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tessro/slotplayer/internal/config"
	perrors "github.com/tessro/slotplayer/internal/errors"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg *config.Config
)

// Player flags. They override the config file when set.
var (
	flagSlots   int
	flagPort    int
	flagFolder  string
	flagOSCOut  string
	flagDebug   bool
	flagManual  bool
	flagEngine  string
	flagStatus  string
	flagTUI     bool
	flagLogFile string
)

var rootCmd = &cobra.Command{
	Use:   "slotplayer",
	Short: "Multi-slot video player controlled over OSC",
	Long: `Slotplayer keeps a bank of numbered video slots and plays them on command.

Clips are loaded and played by OSC messages sent to its UDP port. Run
"slotplayer manual" for the list of accepted messages.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	RunE:          runPlayer,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.slotplayerrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	f := rootCmd.Flags()
	f.IntVarP(&flagSlots, "numslots", "n", 0, "number of slots (default 50)")
	f.IntVarP(&flagPort, "port", "p", 0, "OSC listening port (default 30003)")
	f.StringVarP(&flagFolder, "folder", "f", "", "load every XXX_descr.ext video in the folder at startup")
	f.StringVarP(&flagOSCOut, "oscout", "o", "", "send /clipinfo notifications to host:port or port")
	f.BoolVarP(&flagDebug, "debug", "d", false, "log at debug level")
	f.BoolVarP(&flagManual, "man", "m", false, "print the OSC manual and exit")
	f.StringVar(&flagEngine, "engine", "", "playback engine: clock or mpv")
	f.StringVar(&flagStatus, "status", "", "serve the HTTP status endpoint on this address")
	f.BoolVar(&flagTUI, "tui", false, "show the terminal monitor")
	f.StringVar(&flagLogFile, "log-file", "", "write JSON logs to this file")
}

func initConfig(cmd *cobra.Command) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd.Flags(), cfg)

	if err := cfg.Validate(); err != nil {
		return perrors.WithSuggestion(err, "Check the config file or flags, see 'slotplayer config show'")
	}

	return nil
}

// applyFlags copies the player flags that were set on the command line.
func applyFlags(f *pflag.FlagSet, c *config.Config) {
	if f.Lookup("numslots") == nil {
		return
	}
	if f.Changed("numslots") {
		c.Player.Slots = flagSlots
	}
	if f.Changed("port") {
		c.OSC.Port = flagPort
	}
	if f.Changed("folder") {
		c.Player.Folder = flagFolder
	}
	if f.Changed("oscout") {
		c.OSC.Out = flagOSCOut
	}
	if f.Changed("debug") && flagDebug {
		c.Log.Level = "debug"
	}
	if f.Changed("engine") {
		c.Engine.Backend = flagEngine
	}
	if f.Changed("status") {
		c.Status.Addr = flagStatus
	}
	if f.Changed("tui") {
		c.TUI.Enabled = flagTUI
	}
	if f.Changed("log-file") {
		c.Log.File = flagLogFile
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, perrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
