package player

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tessro/slotplayer/internal/core"
)

// traceEngine records every engine call as "path:call".
type traceEngine struct {
	durations map[string]float64
	failing   map[string]bool
	trace     []string
	movies    map[string]*traceMovie
}

func newTraceEngine() *traceEngine {
	return &traceEngine{
		durations: map[string]float64{},
		failing:   map[string]bool{},
		movies:    map[string]*traceMovie{},
	}
}

func (e *traceEngine) Open(path string) (core.Movie, error) {
	if e.failing[path] {
		return nil, errors.New("no such file")
	}
	d, ok := e.durations[path]
	if !ok {
		d = 10
	}
	m := &traceMovie{engine: e, path: path, duration: d}
	e.movies[path] = m
	e.record(path, "open")
	return m, nil
}

func (e *traceEngine) record(path, call string) {
	e.trace = append(e.trace, path+":"+call)
}

func (e *traceEngine) reset() {
	e.trace = nil
}

// calls returns the trace entries of one movie, without the path prefix.
func (e *traceEngine) calls(path string) []string {
	var out []string
	for _, t := range e.trace {
		if rest, ok := strings.CutPrefix(t, path+":"); ok {
			out = append(out, rest)
		}
	}
	return out
}

type traceMovie struct {
	engine   *traceEngine
	path     string
	duration float64
	position float64
	done     bool
	closed   bool
}

func (m *traceMovie) Path() string { return m.path }
func (m *traceMovie) Play()        { m.engine.record(m.path, "play") }
func (m *traceMovie) Stop()        { m.engine.record(m.path, "stop") }
func (m *traceMovie) SetPaused(p bool) {
	m.engine.record(m.path, fmt.Sprintf("paused(%t)", p))
}
func (m *traceMovie) SetSpeed(s float64) {
	m.engine.record(m.path, fmt.Sprintf("speed(%g)", s))
}
func (m *traceMovie) SetPosition(p float64) {
	m.position = p
	m.engine.record(m.path, fmt.Sprintf("pos(%g)", p))
}
func (m *traceMovie) Duration() float64 { return m.duration }
func (m *traceMovie) Position() float64 { return m.position }
func (m *traceMovie) IsDone() bool      { return m.done }
func (m *traceMovie) Update()           { m.engine.record(m.path, "update") }
func (m *traceMovie) Close() error {
	m.closed = true
	m.engine.record(m.path, "close")
	return nil
}

type recordingSender struct {
	sent []string
	err  error
}

func (s *recordingSender) Send(address string, args ...any) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, fmt.Sprintf("%s %v", address, args))
	return nil
}

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestSession(t *testing.T, n int, opts ...Option) (*Session, *traceEngine) {
	t.Helper()
	eng := newTraceEngine()
	opts = append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)
	return NewSession(n, eng, opts...), eng
}

func mustLoad(t *testing.T, s *Session, idx int, path string) {
	t.Helper()
	if err := s.Load(idx, path); err != nil {
		t.Fatalf("Load(%d, %q) error = %v", idx, path, err)
	}
}

func equalTrace(t *testing.T, got, want []string) {
	t.Helper()
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("trace = %v, want %v", got, want)
	}
}
