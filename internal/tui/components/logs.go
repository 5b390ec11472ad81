package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/slotplayer/internal/tui/styles"
)

// Logs shows the tail of the player log
type Logs struct {
	back int
}

// NewLogs creates a new Logs component
func NewLogs() *Logs {
	return &Logs{}
}

// ScrollUp moves back in the log
func (l *Logs) ScrollUp() {
	l.back++
}

// ScrollDown moves towards the newest line
func (l *Logs) ScrollDown() {
	if l.back > 0 {
		l.back--
	}
}

// Render renders the log panel
func (l *Logs) Render(lines []string, width, height int, focused bool) string {
	title := styles.PanelTitle("Log", focused)

	var content string
	if len(lines) == 0 {
		content = styles.Muted.Render("Nothing logged")
	} else {
		content = l.renderLines(lines, width-4, height-4)
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

func (l *Logs) renderLines(lines []string, width, maxLines int) string {
	if maxLines < 1 {
		maxLines = 1
	}
	if l.back > len(lines)-1 {
		l.back = len(lines) - 1
	}

	end := len(lines) - l.back
	start := end - maxLines
	if start < 0 {
		start = 0
	}

	out := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		line = truncate(line, width)
		switch {
		case strings.Contains(line, " ERR "), strings.Contains(line, " FTL "):
			line = styles.ErrorText.Render(line)
		case strings.Contains(line, " WRN "):
			line = styles.Paused.Render(line)
		case strings.Contains(line, " DBG "):
			line = styles.Dim.Render(line)
		}
		out = append(out, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, out...)
}
