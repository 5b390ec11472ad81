// Package player implements the multi-slot playback session: the slot store,
// the single-current-slot playback controller, the command dispatcher, the
// clip-loaded notifier and the folder loader.
//
// A Session is not safe for concurrent use. It is owned by one tick loop that
// drains inbound commands and then calls Tick once per frame.
package player

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/slotplayer/internal/core"
	perrors "github.com/tessro/slotplayer/internal/errors"
)

const noSlot = -1

// slot is one playback unit. The playback fields are only read while loaded.
type slot struct {
	movie            core.Movie
	loaded           bool
	path             string
	speed            float64
	paused           bool
	stopWhenFinished bool
	duration         float64
	loadedAt         time.Time
}

// Session is the process-wide player state.
type Session struct {
	engine   core.Engine
	slots    []slot
	notifier *Notifier
	log      zerolog.Logger
	out      io.Writer
	now      func() time.Time

	current    int
	playing    bool
	needsApply bool
	ticks      uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithNotifier enables clip-loaded notifications.
func WithNotifier(n *Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithDumpWriter sets where Dump writes its listing. Defaults to stdout.
func WithDumpWriter(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithClock overrides the time source used for load timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates a session with numSlots empty slots.
func NewSession(numSlots int, engine core.Engine, opts ...Option) *Session {
	if numSlots < 0 {
		numSlots = 0
	}
	s := &Session{
		engine:  engine,
		slots:   make([]slot, numSlots),
		log:     zerolog.Nop(),
		out:     os.Stdout,
		now:     time.Now,
		current: noSlot,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NumSlots returns the fixed slot capacity.
func (s *Session) NumSlots() int {
	return len(s.slots)
}

// Current returns the current slot, if any.
func (s *Session) Current() (int, bool) {
	return s.current, s.current != noSlot
}

// IsPlaying returns true if the current slot is being advanced.
func (s *Session) IsPlaying() bool {
	return s.playing
}

// State returns the controller state.
func (s *Session) State() core.PlaybackState {
	switch {
	case s.current == noSlot:
		return core.StateIdle
	case !s.playing:
		return core.StateStopped
	case s.slots[s.current].paused:
		return core.StatePaused
	default:
		return core.StatePlaying
	}
}

// Snapshot returns an immutable view of the session.
func (s *Session) Snapshot() core.Snapshot {
	snap := core.Snapshot{
		Tick:        s.ticks,
		NumSlots:    len(s.slots),
		State:       s.State(),
		CurrentSlot: s.current,
		IsPlaying:   s.playing,
		Clips:       s.LoadedSlots(),
	}
	if sl := s.currentSlot(); sl != nil {
		snap.Speed = sl.speed
		snap.Position = sl.movie.Position()
	}
	return snap
}

// Dump writes one line per loaded slot to the dump writer.
func (s *Session) Dump() {
	fmt.Fprintln(s.out, "Loaded Clips:")
	for _, c := range s.LoadedSlots() {
		fmt.Fprintf(s.out, "slot:%d, path:%s, dur:%g\n", c.Slot, c.Path, c.Duration)
	}
}

// NotifyAllLoaded sends a clip-info notification for every loaded slot.
func (s *Session) NotifyAllLoaded() error {
	if s.notifier == nil {
		s.log.Error().Msg("sendClipsInfo: notification endpoint not set")
		return perrors.ErrEndpointUnset
	}
	return s.notifier.NotifyAll(s.LoadedSlots())
}

// Close releases every loaded movie.
func (s *Session) Close() error {
	var firstErr error
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.loaded {
			continue
		}
		if err := sl.movie.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close slot %d: %w", i, err)
		}
		*sl = slot{}
	}
	s.current = noSlot
	s.playing = false
	return firstErr
}

// currentSlot returns the current slot if it is set and loaded.
func (s *Session) currentSlot() *slot {
	if s.current == noSlot {
		return nil
	}
	sl := &s.slots[s.current]
	if !sl.loaded {
		return nil
	}
	return sl
}

// slotError carries the offending slot index of a rejected operation.
type slotError struct {
	slot int
	err  error
}

func (e *slotError) Error() string {
	return fmt.Sprintf("slot %d: %v", e.slot, e.err)
}

func (e *slotError) Unwrap() error {
	return e.err
}

func (s *Session) checkSlot(idx int) error {
	if idx < 0 || idx >= len(s.slots) {
		return &slotError{slot: idx, err: perrors.ErrSlotOutOfRange}
	}
	return nil
}

func (s *Session) checkLoaded(idx int) error {
	if err := s.checkSlot(idx); err != nil {
		return err
	}
	if !s.slots[idx].loaded {
		return &slotError{slot: idx, err: perrors.ErrSlotNotLoaded}
	}
	return nil
}
