package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/player"
)

var manualCmd = &cobra.Command{
	Use:     "manual",
	Aliases: []string{"man"},
	Short:   "Print the OSC API and keyboard shortcuts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printManual(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(manualCmd)
}

type manualEntry struct {
	Address     string `json:"address"`
	Usage       string `json:"usage"`
	Description string `json:"description"`
}

type shortcut struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

var shortcuts = []shortcut{
	{string(rune(core.KeyDump)), "Dump information about loaded clips"},
	{string(rune(core.KeyFullscreen)), "Toggle fullscreen"},
	{string(rune(core.KeyQuit)), "Quit this application"},
}

func printManual(w io.Writer) error {
	cmds := player.Commands()

	if JSONOutput() {
		entries := make([]manualEntry, len(cmds))
		for i, c := range cmds {
			entries[i] = manualEntry{Address: c.Address, Usage: c.Usage, Description: c.Description}
		}
		return printJSON(w, map[string]any{
			"port":      cfg.OSC.Port,
			"commands":  entries,
			"shortcuts": shortcuts,
			"notify":    player.ClipInfoAddress + " slot:int path:str duration:float",
		})
	}

	fmt.Fprintf(w, "OSC API (UDP port %d)\n\n", cfg.OSC.Port)
	for _, c := range cmds {
		fmt.Fprintf(w, "  %s\n      %s\n", c.Usage, c.Description)
	}

	fmt.Fprintf(w, "\nNotifications (sent to --oscout)\n\n")
	fmt.Fprintf(w, "  %s slot:int path:str duration:float\n", player.ClipInfoAddress)
	fmt.Fprintf(w, "      Sent when a clip is loaded and for every clip on /clipsinfo\n")

	fmt.Fprintf(w, "\nKeyboard (--tui)\n\n")
	t := NewTable(w)
	for _, s := range shortcuts {
		t.Row("  "+s.Key, s.Description)
	}
	t.Flush()
	return nil
}
