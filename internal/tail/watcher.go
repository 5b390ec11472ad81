package tail

import (
	"sync"
	"time"

	"github.com/tessro/slotplayer/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventClipLoaded EventType = iota
	EventClipReplaced
	EventSlotChange
	EventStart
	EventStop
	EventPause
	EventResume
	EventSpeedChange
)

// Event represents a player state change or an inbound notification.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Slot      int
	Clip      *core.ClipInfo
	Previous  *core.Snapshot
	Current   *core.Snapshot
}

// Watcher turns the published snapshot stream into events.
type Watcher struct {
	mu     sync.Mutex
	prev   *core.Snapshot
	events chan Event
	closed bool
	now    func() time.Time
}

// NewWatcher creates a new state watcher. buffer bounds the event queue;
// events are dropped when it is full.
func NewWatcher(buffer int) *Watcher {
	if buffer <= 0 {
		buffer = 16
	}
	return &Watcher{
		events: make(chan Event, buffer),
		now:    time.Now,
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Publish implements core.Observer.
func (w *Watcher) Publish(s core.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	curr := &s
	for _, e := range diffSnapshots(w.prev, curr, w.now()) {
		select {
		case w.events <- e:
		default:
			// Drop event if channel is full
		}
	}
	w.prev = curr
}

// Close stops the watcher and closes the event channel.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.events)
	}
}

// diffSnapshots compares two snapshots and returns detected events.
func diffSnapshots(prev, curr *core.Snapshot, now time.Time) []Event {
	if curr == nil {
		return nil
	}

	var events []Event
	add := func(t EventType, slot int, clip *core.ClipInfo) {
		events = append(events, Event{
			Type:      t,
			Timestamp: now,
			Slot:      slot,
			Clip:      clip,
			Previous:  prev,
			Current:   curr,
		})
	}

	// Clip changes
	prevClips := map[int]core.ClipInfo{}
	if prev != nil {
		for _, c := range prev.Clips {
			prevClips[c.Slot] = c
		}
	}
	for i := range curr.Clips {
		c := &curr.Clips[i]
		old, seen := prevClips[c.Slot]
		switch {
		case !seen:
			add(EventClipLoaded, c.Slot, c)
		case old.Path != c.Path || !old.LoadedAt.Equal(c.LoadedAt):
			add(EventClipReplaced, c.Slot, c)
		}
	}

	// First snapshot - nothing to compare playback against
	if prev == nil {
		if curr.IsPlaying {
			add(EventStart, curr.CurrentSlot, curr.Current())
		}
		return events
	}

	if curr.HasCurrent() && prev.CurrentSlot != curr.CurrentSlot {
		add(EventSlotChange, curr.CurrentSlot, curr.Current())
	}

	switch {
	case !prev.IsPlaying && curr.IsPlaying:
		add(EventStart, curr.CurrentSlot, curr.Current())
	case prev.IsPlaying && !curr.IsPlaying:
		add(EventStop, curr.CurrentSlot, curr.Current())
	case prev.IsPlaying && curr.IsPlaying && prev.CurrentSlot == curr.CurrentSlot:
		if prev.State != core.StatePaused && curr.State == core.StatePaused {
			add(EventPause, curr.CurrentSlot, curr.Current())
		} else if prev.State == core.StatePaused && curr.State == core.StatePlaying {
			add(EventResume, curr.CurrentSlot, curr.Current())
		}
		if prev.Speed != curr.Speed {
			add(EventSpeedChange, curr.CurrentSlot, curr.Current())
		}
	}

	return events
}
