package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/slotplayer/internal/config"
	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/engine/clock"
	"github.com/tessro/slotplayer/internal/osc"
)

func testConfig(slots int) *config.Config {
	cfg := config.Default()
	cfg.Player.Slots = slots
	cfg.OSC.Port = 0 // any free port
	cfg.Engine.FPS = 200
	return cfg
}

func runApp(t *testing.T, a *App) <-chan error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("Run() did not return")
	}
}

func TestRunProcessesCommandsUntilQuit(t *testing.T) {
	latest := &core.LatestSnapshot{}
	a, err := New(testConfig(3), zerolog.Nop(),
		WithEngine(clock.New(clock.WithoutFileCheck())),
		WithObserver(latest),
		WithoutSignals(),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	done := runApp(t, a)

	sender := osc.NewSender(osc.Endpoint{Host: "127.0.0.1", Port: a.Port()})
	for _, m := range []struct {
		addr string
		args []any
	}{
		{"/load", []any{int32(0), "a.mp4"}},
		{"/load", []any{int32(1), "b.mp4"}},
		{"/play", []any{int32(1), float32(2), float32(0), int32(0), int32(1)}},
		{"/quit", nil},
	} {
		if err := sender.Send(m.addr, m.args...); err != nil {
			t.Fatalf("Send(%s) error = %v", m.addr, err)
		}
	}
	waitDone(t, done)

	snap, ok := latest.Load()
	if !ok {
		t.Fatal("no snapshot published")
	}
	if snap.CurrentSlot != 1 || !snap.IsPlaying || snap.Speed != 2 {
		t.Errorf("snapshot = %+v, want slot 1 playing at 2x", snap)
	}
	if len(snap.Clips) != 2 {
		t.Errorf("clips = %v, want 2", snap.Clips)
	}
}

func TestRunQuitKey(t *testing.T) {
	keys := make(chan core.Key, 2)
	var dump bytes.Buffer
	a, err := New(testConfig(2), zerolog.Nop(),
		WithEngine(clock.New(clock.WithoutFileCheck())),
		WithKeys(keys),
		WithDumpWriter(&dump),
		WithoutSignals(),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	done := runApp(t, a)

	keys <- core.KeyDump
	keys <- core.KeyQuit
	waitDone(t, done)

	if !strings.HasPrefix(dump.String(), "Loaded Clips:") {
		t.Errorf("dump = %q", dump.String())
	}
}

func TestRunLoadsStartupFolder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0_a.mp4", "1_b.mkv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := testConfig(4)
	cfg.Player.Folder = dir

	latest := &core.LatestSnapshot{}
	keys := make(chan core.Key, 1)
	a, err := New(cfg, zerolog.Nop(),
		WithObserver(latest),
		WithKeys(keys),
		WithoutSignals(),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	done := runApp(t, a)

	deadline := time.Now().Add(3 * time.Second)
	for {
		if snap, ok := latest.Load(); ok && len(snap.Clips) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("startup folder not loaded")
		}
		time.Sleep(10 * time.Millisecond)
	}
	keys <- core.KeyQuit
	waitDone(t, done)
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	cfg := testConfig(2)
	cfg.OSC.Out = "host:80"
	if _, err := New(cfg, zerolog.Nop(), WithEngine(clock.New())); err == nil {
		t.Error("New() error = nil for a privileged out port")
	}
}

func TestNewEngine(t *testing.T) {
	if _, err := NewEngine(config.EngineConfig{Backend: "vlc"}, zerolog.Nop()); err == nil {
		t.Error("NewEngine(vlc) error = nil")
	}
	e, err := NewEngine(config.EngineConfig{Backend: config.BackendClock, FPS: 30, ClockDuration: 4}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine(clock) error = %v", err)
	}
	if _, ok := e.(*clock.Engine); !ok {
		t.Errorf("NewEngine(clock) = %T", e)
	}
	mpvCfg := config.EngineConfig{Backend: config.BackendMPV, MPVPath: filepath.Join(t.TempDir(), "no-mpv")}
	if _, err := NewEngine(mpvCfg, zerolog.Nop()); err == nil {
		t.Error("NewEngine(mpv) with a missing binary error = nil")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := NewLogger(config.LogConfig{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer closer.Close()

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log output = %q", buf.String())
	}

	if _, _, err := NewLogger(config.LogConfig{Level: "loud"}, &buf); err == nil {
		t.Error("NewLogger() error = nil for an unknown level")
	}
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.log")
	log, closer, err := NewLogger(config.LogConfig{Level: "debug", File: path}, nil)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	log.Debug().Int("slot", 3).Msg("loaded slot")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"slot":3`) {
		t.Errorf("log file = %q, want JSON event", data)
	}
}

func TestLogRing(t *testing.T) {
	r := NewLogRing(3)
	for _, s := range []string{"one\n", "two\n", "three\nfour\n"} {
		if _, err := r.Write([]byte(s)); err != nil {
			t.Fatal(err)
		}
	}
	got := strings.Join(r.Lines(), ",")
	if got != "two,three,four" {
		t.Errorf("Lines() = %q, want two,three,four", got)
	}

	small := NewLogRing(5)
	small.Write([]byte("a\n"))
	if got := small.Lines(); len(got) != 1 || got[0] != "a" {
		t.Errorf("Lines() = %v, want [a]", got)
	}
}
