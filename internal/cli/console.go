package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tessro/slotplayer/internal/osc"
	"github.com/tessro/slotplayer/internal/player"
)

var consoleTo string

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive prompt for sending OSC commands",
	Long: `Open a prompt that sends each line as one OSC message to a player.

Lines are typed like 'slotplayer send' arguments. Double quotes keep a
path with spaces together. TAB completes command addresses.

  help    print the OSC API
  exit    leave the console`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().StringVarP(&consoleTo, "to", "t", "", "player address host:port or port (default: configured osc.port)")
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	to := consoleTo
	if to == "" {
		to = strconv.Itoa(cfg.OSC.Port)
	}
	ep, err := osc.ParseEndpoint(to)
	if err != nil {
		return err
	}
	sender := osc.NewSender(ep)

	items := []readline.PrefixCompleterInterface{readline.PcItem("help"), readline.PcItem("exit")}
	for _, c := range player.Commands() {
		items = append(items, readline.PcItem(c.Address))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("%s> ", ep),
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	out := rl.Stdout()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		done, err := consoleLine(out, sender, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if done {
			return nil
		}
	}
}

// consoleLine handles one prompt line. It returns true when the console
// should exit.
func consoleLine(out io.Writer, sender player.Sender, line string) (bool, error) {
	fields, err := splitArgs(line)
	if err != nil {
		return false, err
	}
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "exit":
		return true, nil
	case "help", "?":
		return false, printManual(out)
	}

	if !strings.HasPrefix(fields[0], "/") {
		return false, fmt.Errorf("address must start with /: %q (try help)", fields[0])
	}

	values := make([]any, len(fields)-1)
	for i, f := range fields[1:] {
		values[i] = parseArg(f, false)
	}
	return false, sender.Send(fields[0], values...)
}

// splitArgs splits a line on spaces, keeping double-quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
