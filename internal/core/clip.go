package core

import "time"

// ClipInfo describes the clip loaded into a slot.
type ClipInfo struct {
	Slot     int       `json:"slot"`
	Path     string    `json:"path"`
	Duration float64   `json:"duration"`
	LoadedAt time.Time `json:"loaded_at"`
}

// DurationTime returns the clip duration as a time.Duration.
func (c ClipInfo) DurationTime() time.Duration {
	return time.Duration(c.Duration * float64(time.Second))
}
