package core

import "sync"

// Key is a keyboard shortcut forwarded to the tick loop.
type Key rune

const (
	KeyDump       Key = 'd'
	KeyFullscreen Key = 'f'
	KeyQuit       Key = 'q'
)

// Observer receives a snapshot after every tick. Publish is called on the
// tick loop and must not block.
type Observer interface {
	Publish(Snapshot)
}

// LatestSnapshot keeps the most recently published snapshot for readers on
// other goroutines.
type LatestSnapshot struct {
	mu   sync.RWMutex
	snap Snapshot
	ok   bool
}

// Publish implements Observer.
func (l *LatestSnapshot) Publish(s Snapshot) {
	l.mu.Lock()
	l.snap = s
	l.ok = true
	l.mu.Unlock()
}

// Load returns the latest snapshot and whether one was published.
func (l *LatestSnapshot) Load() (Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap, l.ok
}
