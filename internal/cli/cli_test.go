package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tessro/slotplayer/internal/config"
	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/player"
	"github.com/tessro/slotplayer/internal/status"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		in       string
		asString bool
		want     any
	}{
		{"3", false, int32(3)},
		{"-12", false, int32(-12)},
		{"0.5", false, float32(0.5)},
		{"1e3", false, float32(1000)},
		{"/clips/3_a.mp4", false, "/clips/3_a.mp4"},
		{"99999999999", false, float32(99999999999)},
		{"3", true, "3"},
	}
	for _, tt := range tests {
		got := parseArg(tt.in, tt.asString)
		if got != tt.want {
			t.Errorf("parseArg(%q, %v) = %#v, want %#v", tt.in, tt.asString, got, tt.want)
		}
	}
}

func TestStatusURL(t *testing.T) {
	tests := map[string]string{
		":8080":                  "http://localhost:8080/state",
		"studio:8080":            "http://studio:8080/state",
		"http://studio:8080/":    "http://studio:8080/state",
		"https://example.com/sp": "https://example.com/sp/state",
	}
	for in, want := range tests {
		if got := statusURL(in); got != want {
			t.Errorf("statusURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFetchState(t *testing.T) {
	latest := &core.LatestSnapshot{}
	srv := httptest.NewServer(status.NewServer("", latest, zerolog.Nop()).Handler())
	defer srv.Close()

	ctx := context.Background()
	if _, err := fetchState(ctx, srv.URL+"/state"); err == nil {
		t.Error("fetchState() error = nil before first snapshot")
	}

	latest.Publish(core.Snapshot{NumSlots: 4, CurrentSlot: 1, State: core.StatePaused,
		Clips: []core.ClipInfo{{Slot: 1, Path: "1_b.mp4", Duration: 30}}})
	snap, err := fetchState(ctx, srv.URL+"/state")
	if err != nil {
		t.Fatalf("fetchState() error = %v", err)
	}
	if snap.CurrentSlot != 1 || snap.State != core.StatePaused || len(snap.Clips) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestPrintSnapshot(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := &core.Snapshot{
		NumSlots:    50,
		State:       core.StatePlaying,
		CurrentSlot: 4,
		IsPlaying:   true,
		Speed:       1.5,
		Position:    0.5,
		Clips: []core.ClipInfo{
			{Slot: 0, Path: "/c/0_intro.mp4", Duration: 12},
			{Slot: 4, Path: "/c/4_ocean.mp4", Duration: 130, LoadedAt: now.Add(-2 * time.Hour)},
		},
	}

	var buf bytes.Buffer
	printSnapshot(&buf, snap, now)
	out := buf.String()

	for _, want := range []string{
		"● 4_ocean.mp4  slot 4  1:05/2:10  speed 1.5x",
		"2 of 50 slots loaded",
		"SLOT",
		"4 ▶",
		"2 hours ago",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printSnapshot(&buf, &core.Snapshot{NumSlots: 2, CurrentSlot: -1, State: core.StateIdle}, now)
	if !strings.HasPrefix(buf.String(), "○ idle\n0 of 2 slots loaded") {
		t.Errorf("idle output = %q", buf.String())
	}
}

func TestTypeConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    bool
	}{
		{"player.slots", "100", 100, false},
		{"osc.port", "x", nil, true},
		{"engine.clock_duration", "2.5", 2.5, false},
		{"tui.enabled", "true", true, false},
		{"tui.enabled", "maybe", nil, true},
		{"osc.out", "30004", "30004", false},
	}
	for _, tt := range tests {
		got, err := typeConfigValue(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("typeConfigValue(%s, %s) error = %v", tt.key, tt.value, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("typeConfigValue(%s, %s) = %#v, want %#v", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestConfigSet(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "config.toml")
	defer func() { cfgFile = "" }()

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runConfigSet(cmd, []string{"osc.out", "30004"}); err != nil {
		t.Fatalf("set osc.out error = %v", err)
	}
	if err := runConfigSet(cmd, []string{"player.slots", "8"}); err != nil {
		t.Fatalf("set player.slots error = %v", err)
	}

	loaded, err := config.LoadFrom(cfgFile)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.OSC.Out != "30004" || loaded.Player.Slots != 8 {
		t.Errorf("config = %+v", loaded)
	}

	rejected := [][]string{
		{"player.slots", "0"},
		{"osc.out", "80"},
		{"player.colour", "red"},
		{"slots", "3"},
	}
	for _, args := range rejected {
		if err := runConfigSet(cmd, args); err == nil {
			t.Errorf("set %v error = nil", args)
		}
	}

	data, _ := os.ReadFile(cfgFile)
	if strings.Contains(string(data), "colour") {
		t.Errorf("rejected key written:\n%s", data)
	}
}

func TestApplyFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.AddFlagSet(rootCmd.Flags())
	if err := flags.Parse([]string{"-n", "12", "-o", "9000", "-d", "--engine", "mpv"}); err != nil {
		t.Fatal(err)
	}

	c := config.Default()
	applyFlags(flags, c)

	if c.Player.Slots != 12 || c.OSC.Out != "9000" || c.Log.Level != "debug" || c.Engine.Backend != "mpv" {
		t.Errorf("config = %+v", c)
	}
	if c.OSC.Port != config.Default().OSC.Port {
		t.Errorf("unset port changed to %d", c.OSC.Port)
	}
}

func TestPrintManual(t *testing.T) {
	cfg = config.Default()
	defer func() { cfg = nil }()

	var buf bytes.Buffer
	if err := printManual(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, c := range player.Commands() {
		if !strings.Contains(out, c.Usage) {
			t.Errorf("manual missing %s", c.Usage)
		}
	}
	if !strings.Contains(out, "UDP port 30003") || !strings.Contains(out, "/clipinfo") {
		t.Errorf("manual = %q", out)
	}
}
