package components

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/tail"
	"github.com/tessro/slotplayer/internal/tui/styles"
)

// NowPlaying displays the current slot
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap *core.Snapshot, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	clip := snap.Current()
	if clip == nil {
		content = styles.Muted.Render("No clip selected")
	} else {
		content = n.renderClip(snap, clip, width-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderClip(snap *core.Snapshot, clip *core.ClipInfo, width int) string {
	icon := styles.StateIcon(string(snap.State))
	name := styles.Title.Width(width - 4).Render(filepath.Base(clip.Path))
	slot := styles.Subtitle.Render(fmt.Sprintf("slot %d of %d", clip.Slot, snap.NumSlots))
	dir := styles.Dim.Render(filepath.Dir(clip.Path))

	progressWidth := width - 14
	if progressWidth < 10 {
		progressWidth = 10
	}
	bar := styles.ProgressBar(snap.ProgressPercent(), progressWidth)
	elapsed := tail.FormatSeconds(snap.Position * clip.Duration)
	progress := fmt.Sprintf("%s %s %s", elapsed, bar, tail.FormatSeconds(clip.Duration))

	info := styles.Muted.Render(fmt.Sprintf("%s  speed %sx", snap.State, humanize.Ftoa(snap.Speed)))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+name,
		"  "+slot,
		"  "+dir,
		"",
		progress,
		"",
		info,
	)
}
