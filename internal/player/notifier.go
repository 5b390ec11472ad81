package player

import (
	"github.com/rs/zerolog"

	"github.com/tessro/slotplayer/internal/core"
	perrors "github.com/tessro/slotplayer/internal/errors"
)

// ClipInfoAddress is the address of outbound clip-loaded notifications.
const ClipInfoAddress = "/clipinfo"

// Sender delivers one outbound message.
type Sender interface {
	Send(address string, args ...any) error
}

// Notifier reports loaded clips to an optional remote endpoint.
type Notifier struct {
	sender Sender
	log    zerolog.Logger
}

// NewNotifier creates a notifier. A nil sender disables notifications.
func NewNotifier(sender Sender, log zerolog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		log:    log,
	}
}

// Enabled returns true if an endpoint is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil
}

// NotifyClipLoaded sends /clipinfo slot path duration.
func (n *Notifier) NotifyClipLoaded(slot int, path string, duration float64) error {
	if n == nil {
		return nil
	}
	if n.sender == nil {
		n.log.Debug().Int("slot", slot).Msg("not sending clip info, no endpoint")
		return nil
	}
	n.log.Debug().Int("slot", slot).Str("path", path).Msg("sendClipInfo")
	return n.sender.Send(ClipInfoAddress, int32(slot), path, float32(duration))
}

// NotifyAll sends a notification for each clip. It fails if no endpoint is set.
func (n *Notifier) NotifyAll(clips []core.ClipInfo) error {
	if !n.Enabled() {
		if n == nil {
			return perrors.ErrEndpointUnset
		}
		n.log.Error().Msg("sendClipsInfo: notification endpoint not set")
		return perrors.ErrEndpointUnset
	}
	var partial perrors.PartialResult[int]
	for _, c := range clips {
		if err := n.NotifyClipLoaded(c.Slot, c.Path, c.Duration); err != nil {
			partial.AddError(err)
			continue
		}
		partial.Data++
	}
	if partial.HasErrors() {
		n.log.Warn().Int("sent", partial.Data).Msg(partial.ErrorSummary())
		return partial.Errors[0]
	}
	return nil
}
