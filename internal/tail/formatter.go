package tail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Slot:      e.Slot,
	}

	if e.Clip != nil {
		data.Path = e.Clip.Path
		data.Name = filepath.Base(e.Clip.Path)
		data.Duration = e.Clip.Duration
	}

	if e.Current != nil {
		data.Speed = e.Current.Speed
		data.State = string(e.Current.State)
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Slot      int
	Path      string
	Name      string
	Duration  float64
	Speed     float64
	State     string
}

// clipName returns the clip file name, or the slot number when no clip is known.
func clipName(e Event) string {
	if e.Clip == nil {
		return fmt.Sprintf("slot %d", e.Slot)
	}
	return filepath.Base(e.Clip.Path)
}

// FormatSeconds renders a clip length, e.g. "1:05".
func FormatSeconds(secs float64) string {
	d := time.Duration(secs * float64(time.Second)).Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventClipLoaded:
		if e.Clip != nil {
			return fmt.Sprintf("Loaded slot %d: %s (%s)", e.Slot, clipName(e), FormatSeconds(e.Clip.Duration))
		}
		return fmt.Sprintf("Loaded slot %d", e.Slot)

	case EventClipReplaced:
		return fmt.Sprintf("Replaced slot %d: %s", e.Slot, clipName(e))

	case EventSlotChange:
		return fmt.Sprintf("Switched to slot %d: %s", e.Slot, clipName(e))

	case EventStart:
		if e.Current != nil && e.Current.Speed != 1 {
			return fmt.Sprintf("Playing slot %d at %sx", e.Slot, humanize.Ftoa(e.Current.Speed))
		}
		return fmt.Sprintf("Playing slot %d", e.Slot)

	case EventStop:
		return fmt.Sprintf("Stopped slot %d", e.Slot)

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventSpeedChange:
		if e.Current != nil {
			return fmt.Sprintf("Speed: %sx", humanize.Ftoa(e.Current.Speed))
		}
		return "Speed changed"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventClipLoaded:
		return "📼"
	case EventClipReplaced:
		return "🔁"
	case EventSlotChange:
		return "🎬"
	case EventStart:
		return "▶️"
	case EventStop:
		return "⏹️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "⏯️"
	case EventSpeedChange:
		return "⏩"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventClipLoaded:
		return "clip_loaded"
	case EventClipReplaced:
		return "clip_replaced"
	case EventSlotChange:
		return "slot_change"
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventSpeedChange:
		return "speed_change"
	default:
		return "unknown"
	}
}
