package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colors of a theme.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	TextDim   lipgloss.Color
}

var (
	Dark = Palette{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#EF4444"), // Red
		Border:    lipgloss.Color("#4B5563"),
		Text:      lipgloss.Color("#F9FAFB"),
		TextMuted: lipgloss.Color("#9CA3AF"),
		TextDim:   lipgloss.Color("#6B7280"),
	}

	Light = Palette{
		Primary:   lipgloss.Color("#6D28D9"),
		Secondary: lipgloss.Color("#047857"),
		Warning:   lipgloss.Color("#B45309"),
		Error:     lipgloss.Color("#B91C1C"),
		Border:    lipgloss.Color("#D1D5DB"),
		Text:      lipgloss.Color("#111827"),
		TextMuted: lipgloss.Color("#4B5563"),
		TextDim:   lipgloss.Color("#6B7280"),
	}
)

// Current is the active palette.
var Current = Dark

// Text styles
var (
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	Stopped   lipgloss.Style
	ErrorText lipgloss.Style
)

// Border styles
var (
	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
)

func init() {
	build(Dark)
}

// UseTheme selects the palette for "dark", "light" or "auto". Auto asks the
// terminal for its background.
func UseTheme(name string) {
	switch name {
	case "light":
		build(Light)
	case "dark":
		build(Dark)
	default:
		if lipgloss.HasDarkBackground() {
			build(Dark)
		} else {
			build(Light)
		}
	}
}

func build(p Palette) {
	Current = p

	Title = lipgloss.NewStyle().Bold(true).Foreground(p.Text)
	Subtitle = lipgloss.NewStyle().Foreground(p.TextMuted)
	Label = lipgloss.NewStyle().Foreground(p.TextDim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	Muted = lipgloss.NewStyle().Foreground(p.TextMuted)
	Dim = lipgloss.NewStyle().Foreground(p.TextDim)
	Playing = lipgloss.NewStyle().Foreground(p.Secondary)
	Paused = lipgloss.NewStyle().Foreground(p.Warning)
	Stopped = lipgloss.NewStyle().Foreground(p.TextDim)
	ErrorText = lipgloss.NewStyle().Foreground(p.Error)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Current.Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Current.Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StateIcon returns an icon for a playback state
func StateIcon(state string) string {
	switch state {
	case "playing":
		return Playing.Render("▶")
	case "paused":
		return Paused.Render("⏸")
	case "stopped":
		return Stopped.Render("■")
	default:
		return Dim.Render("·")
	}
}
