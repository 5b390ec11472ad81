package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/slotplayer/internal/osc"
)

var (
	sendTo       string
	sendAsString bool
)

var sendCmd = &cobra.Command{
	Use:   "send <address> [args...]",
	Short: "Send an OSC command to a running player",
	Long: `Send one OSC message to a player.

Arguments are typed by their text: integers are sent as int32, decimals as
float32 and everything else as a string. Use --string to send every
argument as a string.

Examples:
  slotplayer send /load 3 /clips/3_ocean.mp4
  slotplayer send /play 3 0.5
  slotplayer send --to studio:30003 /stop`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "player address host:port or port (default: configured osc.port)")
	sendCmd.Flags().BoolVarP(&sendAsString, "string", "s", false, "send all arguments as strings")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	address := args[0]
	if !strings.HasPrefix(address, "/") {
		return fmt.Errorf("address must start with /: %q", address)
	}

	to := sendTo
	if to == "" {
		to = strconv.Itoa(cfg.OSC.Port)
	}
	ep, err := osc.ParseEndpoint(to)
	if err != nil {
		return err
	}

	values := make([]any, len(args)-1)
	for i, a := range args[1:] {
		values[i] = parseArg(a, sendAsString)
	}

	if err := osc.NewSender(ep).Send(address, values...); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return printJSON(out, map[string]any{
			"status":  "sent",
			"address": address,
			"args":    values,
			"to":      ep.String(),
		})
	}
	if Verbose() {
		fmt.Fprintf(out, "Sent %s %v to %s\n", address, values, ep)
	}
	return nil
}

// parseArg types a command line argument for the wire.
func parseArg(s string, asString bool) any {
	if asString {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(i)
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return float32(f)
	}
	return s
}
