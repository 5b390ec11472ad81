package tail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/osc"
)

var t0 = time.Date(2026, 3, 1, 20, 15, 0, 0, time.UTC)

func snapshot(current int, playing bool, state core.PlaybackState, clips ...core.ClipInfo) *core.Snapshot {
	return &core.Snapshot{
		NumSlots:    4,
		CurrentSlot: current,
		IsPlaying:   playing,
		State:       state,
		Speed:       1,
		Clips:       clips,
	}
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func equalTypes(a, b []EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiffSnapshots(t *testing.T) {
	a := core.ClipInfo{Slot: 0, Path: "/v/0_a.mp4", Duration: 5, LoadedAt: t0}
	b := core.ClipInfo{Slot: 1, Path: "/v/1_b.mp4", Duration: 8, LoadedAt: t0}
	b2 := core.ClipInfo{Slot: 1, Path: "/v/1_c.mp4", Duration: 3, LoadedAt: t0.Add(time.Minute)}

	tests := []struct {
		name string
		prev *core.Snapshot
		curr *core.Snapshot
		want []EventType
	}{
		{
			name: "first snapshot",
			curr: snapshot(-1, false, core.StateIdle, a),
			want: []EventType{EventClipLoaded},
		},
		{
			name: "nothing changed",
			prev: snapshot(0, true, core.StatePlaying, a),
			curr: snapshot(0, true, core.StatePlaying, a),
			want: []EventType{},
		},
		{
			name: "start playing",
			prev: snapshot(-1, false, core.StateIdle, a, b),
			curr: snapshot(1, true, core.StatePlaying, a, b),
			want: []EventType{EventSlotChange, EventStart},
		},
		{
			name: "stop keeps slot",
			prev: snapshot(1, true, core.StatePlaying, a, b),
			curr: snapshot(1, false, core.StateStopped, a, b),
			want: []EventType{EventStop},
		},
		{
			name: "pause and resume",
			prev: snapshot(0, true, core.StatePlaying, a),
			curr: snapshot(0, true, core.StatePaused, a),
			want: []EventType{EventPause},
		},
		{
			name: "reload replaces clip",
			prev: snapshot(0, true, core.StatePlaying, a, b),
			curr: snapshot(0, true, core.StatePlaying, a, b2),
			want: []EventType{EventClipReplaced},
		},
		{
			name: "switch while playing",
			prev: snapshot(0, true, core.StatePlaying, a, b),
			curr: snapshot(1, true, core.StatePlaying, a, b),
			want: []EventType{EventSlotChange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types(diffSnapshots(tt.prev, tt.curr, t0))
			if !equalTypes(got, tt.want) {
				t.Errorf("diffSnapshots() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiffSpeedChange(t *testing.T) {
	prev := snapshot(0, true, core.StatePlaying)
	curr := snapshot(0, true, core.StatePlaying)
	curr.Speed = 2

	got := types(diffSnapshots(prev, curr, t0))
	if !equalTypes(got, []EventType{EventSpeedChange}) {
		t.Errorf("diffSnapshots() = %v, want speed change", got)
	}
}

func TestWatcherPublish(t *testing.T) {
	w := NewWatcher(4)
	clip := core.ClipInfo{Slot: 2, Path: "2_x.mp4"}

	w.Publish(*snapshot(-1, false, core.StateIdle))
	w.Publish(*snapshot(-1, false, core.StateIdle, clip))
	w.Publish(*snapshot(2, true, core.StatePlaying, clip))
	w.Close()
	w.Publish(*snapshot(2, false, core.StateStopped, clip))

	var got []EventType
	for e := range w.Events() {
		got = append(got, e.Type)
	}
	want := []EventType{EventClipLoaded, EventSlotChange, EventStart}
	if !equalTypes(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestWatcherDropsWhenFull(t *testing.T) {
	w := NewWatcher(1)
	w.Publish(*snapshot(-1, false, core.StateIdle,
		core.ClipInfo{Slot: 0, Path: "a"},
		core.ClipInfo{Slot: 1, Path: "b"},
	))
	if n := len(w.Events()); n != 1 {
		t.Errorf("queued %d events, want 1", n)
	}
}

func TestParseClipInfo(t *testing.T) {
	info, err := ParseClipInfo(osc.NewMessage("/clipinfo", int32(3), "/v/3_x.mp4", float32(2.5)))
	if err != nil {
		t.Fatalf("ParseClipInfo() error = %v", err)
	}
	if info.Slot != 3 || info.Path != "/v/3_x.mp4" || info.Duration != 2.5 {
		t.Errorf("ParseClipInfo() = %+v", info)
	}

	for _, msg := range []osc.Message{
		osc.NewMessage("/load", int32(3), "a.mp4"),
		osc.NewMessage("/clipinfo", int32(3)),
		osc.NewMessage("/clipinfo", "3", "a.mp4", float32(1)),
	} {
		if _, err := ParseClipInfo(msg); err == nil {
			t.Errorf("ParseClipInfo(%v) error = nil", msg)
		}
	}
}

func TestListen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan osc.Message, 4)
	messages <- osc.NewMessage("/clipinfo", int32(0), "a.mp4", float32(1))
	messages <- osc.NewMessage("/hello")
	messages <- osc.NewMessage("/clipinfo", int32(0), "b.mp4", float32(2))
	close(messages)

	var others []string
	events := Listen(ctx, messages, func(m osc.Message, _ error) {
		others = append(others, m.Address)
	})

	var got []EventType
	for e := range events {
		got = append(got, e.Type)
	}
	if !equalTypes(got, []EventType{EventClipLoaded, EventClipReplaced}) {
		t.Errorf("events = %v", got)
	}
	if len(others) != 1 || others[0] != "/hello" {
		t.Errorf("others = %v, want [/hello]", others)
	}
}

func TestFormatter(t *testing.T) {
	clip := &core.ClipInfo{Slot: 4, Path: "/media/4_ocean.mp4", Duration: 65}
	e := Event{Type: EventClipLoaded, Timestamp: t0, Slot: 4, Clip: clip}

	tests := []struct {
		name string
		f    *Formatter
		want string
	}{
		{"plain", NewFormatter(WithEmoji(false)), "Loaded slot 4: 4_ocean.mp4 (1:05)"},
		{"timestamp", NewFormatter(WithEmoji(false), WithTimestamp(true)), "20:15:00 Loaded slot 4: 4_ocean.mp4 (1:05)"},
		{"emoji", NewFormatter(), "📼 Loaded slot 4: 4_ocean.mp4 (1:05)"},
		{"template", NewFormatter(WithTemplate("{{.Type}} {{.Slot}} {{.Name}}")), "clip_loaded 4 4_ocean.mp4"},
		{"bad template", NewFormatter(WithEmoji(false), WithTemplate("{{.Nope")), "Loaded slot 4: 4_ocean.mp4 (1:05)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Format(e); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatSpeed(t *testing.T) {
	curr := snapshot(1, true, core.StatePlaying)
	curr.Speed = 2
	got := NewFormatter(WithEmoji(false)).Format(Event{Type: EventStart, Slot: 1, Current: curr})
	if !strings.Contains(got, "at 2x") {
		t.Errorf("Format() = %q, want speed", got)
	}
}
