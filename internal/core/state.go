package core

// PlaybackState is the controller state of the session.
type PlaybackState string

const (
	StateIdle    PlaybackState = "idle"
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
	StateStopped PlaybackState = "stopped"
)

// Snapshot is an immutable view of the session taken after a tick.
type Snapshot struct {
	Tick        uint64        `json:"tick"`
	NumSlots    int           `json:"num_slots"`
	State       PlaybackState `json:"state"`
	CurrentSlot int           `json:"current_slot"` // -1 when unset
	IsPlaying   bool          `json:"is_playing"`
	Speed       float64       `json:"speed"`
	Position    float64       `json:"position"`
	Clips       []ClipInfo    `json:"clips"`
}

// HasCurrent returns true if a current slot is set.
func (s *Snapshot) HasCurrent() bool {
	return s != nil && s.CurrentSlot >= 0
}

// Current returns the clip in the current slot, or nil.
func (s *Snapshot) Current() *ClipInfo {
	if !s.HasCurrent() {
		return nil
	}
	for i := range s.Clips {
		if s.Clips[i].Slot == s.CurrentSlot {
			return &s.Clips[i]
		}
	}
	return nil
}

// ProgressPercent returns playback progress of the current clip (0-100).
func (s *Snapshot) ProgressPercent() float64 {
	if s.Current() == nil {
		return 0
	}
	p := s.Position * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
