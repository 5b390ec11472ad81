package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/slotplayer/internal/core"
	perrors "github.com/tessro/slotplayer/internal/errors"
	"github.com/tessro/slotplayer/internal/tail"
)

var statusAddr string

const statusTimeout = 5 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of a running player",
	Long: `Query the HTTP status endpoint of a running player and print the
current slot and the loaded clips. The player must be started with
--status or status.addr set.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusAddr, "addr", "a", "", "status endpoint address (default: status.addr)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	addr := statusAddr
	if addr == "" {
		addr = cfg.Status.Addr
	}
	if addr == "" {
		return perrors.WithSuggestion(
			fmt.Errorf("no status address"),
			"Start the player with --status :8080 and pass --addr, or set status.addr")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	snap, err := fetchState(ctx, statusURL(addr))
	if err != nil {
		return perrors.WithSuggestion(err, "Is the player running with the status endpoint enabled?")
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return printJSON(out, snap)
	}
	printSnapshot(out, snap, time.Now())
	return nil
}

func statusURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/") + "/state"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/state"
}

func fetchState(ctx context.Context, url string) (*core.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query status: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Data  *core.Snapshot `json:"data"`
		Error string         `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint: %s (%d)", body.Error, resp.StatusCode)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("status endpoint returned no state")
	}
	return body.Data, nil
}

func printSnapshot(w io.Writer, snap *core.Snapshot, now time.Time) {
	if clip := snap.Current(); clip != nil {
		fmt.Fprintf(w, "%s %s  slot %d  %s/%s  speed %sx\n",
			StatusIcon(snap.IsPlaying),
			filepath.Base(clip.Path),
			clip.Slot,
			tail.FormatSeconds(snap.Position*clip.Duration),
			tail.FormatSeconds(clip.Duration),
			humanize.Ftoa(snap.Speed))
	} else {
		fmt.Fprintf(w, "%s %s\n", StatusIcon(false), snap.State)
	}
	fmt.Fprintf(w, "%d of %d slots loaded\n", len(snap.Clips), snap.NumSlots)

	if len(snap.Clips) == 0 {
		return
	}
	fmt.Fprintln(w)

	t := NewTable(w, "SLOT", "CLIP", "DURATION", "LOADED")
	for _, c := range snap.Clips {
		slot := strconv.Itoa(c.Slot)
		if c.Slot == snap.CurrentSlot {
			slot += " ▶"
		}
		loaded := "-"
		if !c.LoadedAt.IsZero() {
			loaded = humanize.RelTime(c.LoadedAt, now, "ago", "from now")
		}
		t.Row(slot, TruncateString(c.Path, 60), tail.FormatSeconds(c.Duration), loaded)
	}
	t.Flush()
}
