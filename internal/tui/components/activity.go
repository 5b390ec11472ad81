package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/slotplayer/internal/tail"
	"github.com/tessro/slotplayer/internal/tui/styles"
)

// Activity displays recent playback events, newest first
type Activity struct {
	formatter *tail.Formatter
	now       func() time.Time
}

// NewActivity creates a new Activity component
func NewActivity() *Activity {
	return &Activity{
		formatter: tail.NewFormatter(tail.WithEmoji(false)),
		now:       time.Now,
	}
}

// Render renders the activity panel
func (a *Activity) Render(events []tail.Event, width, height int, focused bool) string {
	title := styles.PanelTitle("Activity", focused)

	var content string
	if len(events) == 0 {
		content = styles.Muted.Render("No activity yet")
	} else {
		content = a.renderEvents(events, width-4, height-4)
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

func (a *Activity) renderEvents(events []tail.Event, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, e := range events {
		if i >= maxLines {
			break
		}

		ago := humanize.RelTime(e.Timestamp, a.now(), "ago", "from now")
		if a.now().Sub(e.Timestamp) < time.Second {
			ago = "now"
		}

		desc := truncate(a.formatter.Format(e), width-len(ago)-1)
		padding := width - len(desc) - len(ago)
		if padding < 1 {
			padding = 1
		}

		lines = append(lines, desc+
			lipgloss.NewStyle().Width(padding).Render("")+
			styles.Dim.Render(ago))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
