package player

import (
	"fmt"

	"github.com/tessro/slotplayer/internal/core"
	perrors "github.com/tessro/slotplayer/internal/errors"
)

// Load opens path into the given slot. A slot that is already loaded is
// replaced; the previous movie is kept if the new one cannot be opened.
func (s *Session) Load(idx int, path string) error {
	if err := s.checkSlot(idx); err != nil {
		return err
	}

	movie, err := s.engine.Open(path)
	if err != nil {
		return &slotError{slot: idx, err: fmt.Errorf("open %s: %w: %w", path, perrors.ErrLoadFailure, err)}
	}

	sl := &s.slots[idx]
	if sl.loaded {
		s.log.Info().
			Int("slot", idx).
			Str("previous", sl.path).
			Str("new", path).
			Msg("loading a clip in an already used slot")
		if idx == s.current && s.playing {
			s.playing = false
			s.needsApply = false
		}
		s.log.Debug().Int("slot", idx).Msg("closing movie")
		if err := sl.movie.Close(); err != nil {
			s.log.Warn().Err(err).Int("slot", idx).Msg("could not release previous clip")
		}
	}

	*sl = slot{
		movie:            movie,
		path:             path,
		speed:            1,
		paused:           false,
		stopWhenFinished: true,
		duration:         movie.Duration(),
		loadedAt:         s.now(),
	}
	sl.loaded = true

	s.log.Info().Int("slot", idx).Str("path", path).Float64("duration", sl.duration).Msg("loaded slot")

	if s.notifier != nil && s.notifier.Enabled() {
		if err := s.notifier.NotifyClipLoaded(idx, path, sl.duration); err != nil {
			s.log.Warn().Err(err).Int("slot", idx).Msg("clip info notification failed")
		}
	} else {
		s.log.Debug().Int("slot", idx).Msg("not sending OSC notification")
	}
	return nil
}

// IsLoaded reports whether a clip is loaded in the slot. Out-of-range slots
// are never loaded.
func (s *Session) IsLoaded(idx int) bool {
	return s.checkSlot(idx) == nil && s.slots[idx].loaded
}

// Info returns the clip loaded in the slot.
func (s *Session) Info(idx int) (core.ClipInfo, bool) {
	if !s.IsLoaded(idx) {
		return core.ClipInfo{}, false
	}
	sl := &s.slots[idx]
	return core.ClipInfo{
		Slot:     idx,
		Path:     sl.path,
		Duration: sl.duration,
		LoadedAt: sl.loadedAt,
	}, true
}

// LoadedSlots returns the loaded clips in slot order.
func (s *Session) LoadedSlots() []core.ClipInfo {
	var clips []core.ClipInfo
	for i := range s.slots {
		if info, ok := s.Info(i); ok {
			clips = append(clips, info)
		}
	}
	return clips
}
