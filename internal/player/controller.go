package player

import (
	"github.com/tessro/slotplayer/internal/core"
	perrors "github.com/tessro/slotplayer/internal/errors"
)

// PlayOptions are the optional arguments of PlaySlot.
type PlayOptions struct {
	Speed            float64
	SkipSeconds      float64
	Paused           bool
	StopWhenFinished bool
}

// DefaultPlayOptions returns speed 1, no skip, unpaused, stop when finished.
func DefaultPlayOptions() PlayOptions {
	return PlayOptions{
		Speed:            1,
		SkipSeconds:      0,
		Paused:           false,
		StopWhenFinished: true,
	}
}

// PlaySlot makes idx the current slot and starts it. The previous current
// slot is stopped first when it is a different one. Playing the current
// slot again seeks it back to the skip position.
func (s *Session) PlaySlot(idx int, opts PlayOptions) error {
	if err := s.checkLoaded(idx); err != nil {
		return err
	}

	replay := idx == s.current
	s.switchFrom(idx)

	s.current = idx
	sl := &s.slots[idx]
	sl.speed = opts.Speed
	sl.paused = opts.Paused
	sl.stopWhenFinished = opts.StopWhenFinished

	sl.movie.Play()
	sl.movie.SetSpeed(opts.Speed)
	// A fresh switch was rewound by Stop.
	if (replay || opts.SkipSeconds != 0) && sl.duration > 0 {
		sl.movie.SetPosition(opts.SkipSeconds / sl.duration)
	}
	s.needsApply = true
	s.playing = true

	s.log.Info().
		Int("slot", idx).
		Float64("speed", opts.Speed).
		Float64("skiptime", opts.SkipSeconds).
		Bool("paused", opts.Paused).
		Bool("stop_when_finished", opts.StopWhenFinished).
		Msg("/play")
	return nil
}

// Stop stops the current slot. The slot stays current.
func (s *Session) Stop() error {
	if !s.playing {
		return perrors.ErrNotPlaying
	}
	if err := s.checkLoaded(s.current); err != nil {
		return err
	}

	s.log.Debug().Int("slot", s.current).Msg("stopping slot")
	s.slots[s.current].movie.Stop()
	s.playing = false
	s.needsApply = false
	return nil
}

// SetPaused pauses or resumes the current slot immediately.
func (s *Session) SetPaused(paused bool) error {
	if !s.playing {
		return perrors.ErrNotPlaying
	}
	if err := s.checkLoaded(s.current); err != nil {
		return err
	}

	sl := &s.slots[s.current]
	sl.paused = paused
	sl.movie.SetPaused(paused)
	return nil
}

// SetSpeed changes the speed of the current slot immediately.
func (s *Session) SetSpeed(speed float64) error {
	if s.current == noSlot {
		return perrors.ErrSlotNotLoaded
	}
	if err := s.checkLoaded(s.current); err != nil {
		return err
	}

	sl := &s.slots[s.current]
	sl.speed = speed
	sl.movie.SetSpeed(speed)
	return nil
}

// Scrub sets the fractional position of the current slot.
func (s *Session) Scrub(pos float64) error {
	if s.current == noSlot {
		return perrors.ErrSlotNotLoaded
	}
	return s.ScrubSlot(s.current, pos)
}

// ScrubSlot sets the fractional position of idx. If idx is not the current
// slot it becomes current in a paused preview at speed 0. pos is handed to
// the engine unclamped.
func (s *Session) ScrubSlot(idx int, pos float64) error {
	if err := s.checkLoaded(idx); err != nil {
		return err
	}

	sl := &s.slots[idx]
	if idx != s.current {
		s.switchFrom(idx)
		sl.movie.Play()
		sl.movie.SetSpeed(0)
		sl.movie.SetPaused(true)
		sl.speed = 0
		sl.paused = true
		s.current = idx
		s.needsApply = false
	}
	s.playing = true
	sl.movie.SetPosition(pos)
	return nil
}

// SetPosition sets the fractional position of the current slot. It does
// nothing when no loaded slot is current.
func (s *Session) SetPosition(pos float64) {
	if sl := s.currentSlot(); sl != nil {
		sl.movie.SetPosition(pos)
	}
}

// ToggleFullscreen forwards to the current movie if it supports it.
func (s *Session) ToggleFullscreen() bool {
	sl := s.currentSlot()
	if sl == nil {
		return false
	}
	fs, ok := sl.movie.(core.Fullscreener)
	if !ok {
		s.log.Debug().Msg("engine has no fullscreen surface")
		return false
	}
	fs.ToggleFullscreen()
	return true
}

// Tick advances the current slot by one frame. Staged speed and pause
// changes are applied before the end-of-clip check and the advance.
func (s *Session) Tick() {
	s.ticks++

	if !s.playing {
		return
	}
	sl := s.currentSlot()
	if sl == nil {
		return
	}

	if s.needsApply {
		sl.movie.SetSpeed(sl.speed)
		sl.movie.SetPaused(sl.paused)
		s.needsApply = false
	}

	if sl.movie.IsDone() {
		if sl.stopWhenFinished {
			s.log.Debug().Int("slot", s.current).Msg("clip finished, stopping")
			sl.movie.Stop()
			s.playing = false
		} else if !sl.paused {
			s.log.Debug().Int("slot", s.current).Msg("clip finished, holding last frame")
			sl.movie.SetPaused(true)
			sl.paused = true
		}
		return
	}

	sl.movie.Update()
}

// switchFrom stops the current slot before next becomes current.
func (s *Session) switchFrom(next int) {
	if s.current == noSlot || s.current == next {
		return
	}
	if prev := s.currentSlot(); prev != nil {
		s.log.Debug().Int("from", s.current).Int("to", next).Msg("switching slot")
		prev.movie.Stop()
	}
	s.playing = false
	s.needsApply = false
}
