package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// fakeMPV answers IPC commands from a property table.
type fakeMPV struct {
	mu       sync.Mutex
	props    map[string]any
	commands []string
	events   bool
	ln       net.Listener
}

func startFake(t *testing.T, props map[string]any) (*fakeMPV, string) {
	t.Helper()
	// unix socket paths are length limited, keep it short
	dir, err := os.MkdirTemp("", "mpvt")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s")
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeMPV{props: props, ln: ln}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go f.serve(conn)
		}
	}()
	return f, socket
}

func (f *fakeMPV) serve(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			return
		}
		f.mu.Lock()
		parts := make([]string, len(cmd.Command))
		for i, a := range cmd.Command {
			parts[i] = fmt.Sprint(a)
		}
		f.commands = append(f.commands, strings.Join(parts, " "))

		resp := map[string]any{"error": "success"}
		switch cmd.Command[0] {
		case "get_property":
			v, ok := f.props[cmd.Command[1].(string)]
			if ok {
				resp["data"] = v
			} else {
				resp["error"] = "property unavailable"
			}
		case "set_property":
			f.props[cmd.Command[1].(string)] = cmd.Command[2]
		}
		events := f.events
		f.mu.Unlock()

		if events {
			conn.Write([]byte(`{"event":"playback-restart"}` + "\n"))
		}
		b, _ := json.Marshal(resp)
		conn.Write(append(b, '\n'))
	}
}

func (f *fakeMPV) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.commands)
}

func (f *fakeMPV) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = nil
}

func TestMovieCommands(t *testing.T) {
	fake, socket := startFake(t, map[string]any{"duration": 12.0})
	m := newMovie(newClient(socket), "clip.mp4", zerolog.Nop())

	if err := m.waitReady(startTimeout); err != nil {
		t.Fatalf("waitReady() error = %v", err)
	}
	if m.Duration() != 12 {
		t.Errorf("Duration() = %v, want 12", m.Duration())
	}
	fake.reset()

	m.Play()
	m.SetSpeed(1.5)
	m.SetPosition(0.25)
	m.ToggleFullscreen()

	want := []string{
		"set_property pause false",
		"set_property speed 1.5",
		"seek 25 absolute-percent+exact",
		"cycle fullscreen",
	}
	if got := fake.sent(); !slices.Equal(got, want) {
		t.Errorf("commands = %q, want %q", got, want)
	}
	if m.Position() != 0.25 {
		t.Errorf("Position() = %v, want 0.25", m.Position())
	}
}

func TestMovieZeroSpeedHoldsFrame(t *testing.T) {
	fake, socket := startFake(t, map[string]any{})
	m := newMovie(newClient(socket), "clip.mp4", zerolog.Nop())

	m.SetSpeed(0)

	want := []string{"set_property speed 0.01", "set_property pause true"}
	if got := fake.sent(); !slices.Equal(got, want) {
		t.Errorf("commands = %q, want %q", got, want)
	}
}

func TestMovieUpdate(t *testing.T) {
	fake, socket := startFake(t, map[string]any{"percent-pos": 40.0, "eof-reached": false})
	fake.mu.Lock()
	fake.events = true
	fake.mu.Unlock()
	m := newMovie(newClient(socket), "clip.mp4", zerolog.Nop())

	m.Update()
	if m.Position() != 0.4 || m.IsDone() {
		t.Errorf("after Update: position %v done %v", m.Position(), m.IsDone())
	}

	fake.mu.Lock()
	fake.props["eof-reached"] = true
	fake.mu.Unlock()
	m.Update()
	if !m.IsDone() {
		t.Error("IsDone() = false after eof")
	}

	fake.reset()
	m.Play()
	want := []string{"seek 0 absolute-percent+exact", "set_property pause false"}
	if got := fake.sent(); !slices.Equal(got, want) {
		t.Errorf("Play() after eof sent %q, want %q", got, want)
	}
}

func TestCommandError(t *testing.T) {
	_, socket := startFake(t, map[string]any{})
	c := newClient(socket)

	if _, err := c.getFloat("nope"); err == nil || !strings.Contains(err.Error(), "property unavailable") {
		t.Errorf("getFloat() error = %v", err)
	}
	if _, err := newClient(filepath.Join(t.TempDir(), "none")).poll("quit"); err == nil {
		t.Error("poll() on missing socket error = nil")
	}
}

func TestArgs(t *testing.T) {
	e := New(WithArgs("--mute=yes"))
	got := e.args("/tmp/s.sock", "-clip.mp4")

	if !slices.Contains(got, "--input-ipc-server=/tmp/s.sock") {
		t.Errorf("args %q missing ipc socket", got)
	}
	if !slices.Contains(got, "--mute=yes") {
		t.Errorf("args %q missing extra arg", got)
	}
	if n := len(got); got[n-2] != "--" || got[n-1] != "-clip.mp4" {
		t.Errorf("args %q do not end with the clip path", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	e := New()
	if _, err := e.Open(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("Open(missing) error = nil")
	}
}
