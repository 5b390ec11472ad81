package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/tail"
	"github.com/tessro/slotplayer/internal/tui/styles"
)

// Slots lists the loaded slots
type Slots struct {
	offset int
	filter string
}

// NewSlots creates a new Slots component
func NewSlots() *Slots {
	return &Slots{}
}

// ScrollDown scrolls the list down
func (s *Slots) ScrollDown() {
	s.offset++
}

// ScrollUp scrolls the list up
func (s *Slots) ScrollUp() {
	if s.offset > 0 {
		s.offset--
	}
}

// SetFilter shows only clips whose file name contains f.
func (s *Slots) SetFilter(f string) {
	s.filter = strings.ToLower(f)
	s.offset = 0
}

// Filter returns the active filter.
func (s *Slots) Filter() string {
	return s.filter
}

// Visible returns the clips that pass the filter.
func (s *Slots) Visible(clips []core.ClipInfo) []core.ClipInfo {
	if s.filter == "" {
		return clips
	}
	out := make([]core.ClipInfo, 0, len(clips))
	for _, c := range clips {
		if strings.Contains(strings.ToLower(filepath.Base(c.Path)), s.filter) {
			out = append(out, c)
		}
	}
	return out
}

// Render renders the slots panel
func (s *Slots) Render(snap *core.Snapshot, width, height int, focused bool) string {
	label := "Slots"
	if snap != nil {
		label = fmt.Sprintf("Slots %d/%d", len(snap.Clips), snap.NumSlots)
	}
	if s.filter != "" {
		label += " /" + s.filter
	}
	title := styles.PanelTitle(label, focused)

	var content string
	var clips []core.ClipInfo
	if snap != nil {
		clips = s.Visible(snap.Clips)
	}
	switch {
	case snap == nil || len(snap.Clips) == 0:
		content = styles.Muted.Render("No clips loaded")
	case len(clips) == 0:
		content = styles.Muted.Render("No clips match")
	default:
		content = s.renderSlots(clips, snap.CurrentSlot, width-4, height-4)
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

func (s *Slots) renderSlots(clips []core.ClipInfo, current, width, maxLines int) string {
	if s.offset >= len(clips) {
		s.offset = 0
	}

	// Leave room for the "more" indicator
	visibleCount := maxLines - 1
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := s.offset
	end := start + visibleCount
	if end > len(clips) {
		end = len(clips)
	}

	lines := make([]string, 0, end-start+1)

	// "XXX. " (5) + "▶ " (2) + " " (1) + "mm:ss" (5)
	const overhead = 13

	for _, c := range clips[start:end] {
		num := fmt.Sprintf("%3d.", c.Slot)
		dur := tail.FormatSeconds(c.Duration)
		name := truncate(filepath.Base(c.Path), width-overhead)

		padding := width - overhead - len(name)
		if padding < 1 {
			padding = 1
		}

		var line string
		if c.Slot == current {
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s%s%s", num, name, strings.Repeat(" ", padding), dur))
		} else {
			line = fmt.Sprintf("%s   %s%s%s",
				styles.Dim.Render(num),
				name,
				strings.Repeat(" ", padding),
				styles.Muted.Render(dur))
		}
		lines = append(lines, line)
	}

	if end < len(clips) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("     ... and %d more", len(clips)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
