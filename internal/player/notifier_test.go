package player

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tessro/slotplayer/internal/core"
	perrors "github.com/tessro/slotplayer/internal/errors"
)

func TestNotifierDisabled(t *testing.T) {
	var nilNotifier *Notifier
	for name, n := range map[string]*Notifier{
		"nil notifier": nilNotifier,
		"nil sender":   NewNotifier(nil, zerolog.Nop()),
	} {
		t.Run(name, func(t *testing.T) {
			if n.Enabled() {
				t.Error("Enabled() = true")
			}
			if err := n.NotifyClipLoaded(0, "a.mp4", 1); err != nil {
				t.Errorf("NotifyClipLoaded() error = %v, want nil", err)
			}
			if err := n.NotifyAll([]core.ClipInfo{{Slot: 0}}); !errors.Is(err, perrors.ErrEndpointUnset) {
				t.Errorf("NotifyAll() error = %v, want ErrEndpointUnset", err)
			}
		})
	}
}

func TestNotifyClipLoadedArgs(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, zerolog.Nop())

	if err := n.NotifyClipLoaded(4, "/media/4_loop.mp4", 2.5); err != nil {
		t.Fatalf("NotifyClipLoaded() error = %v", err)
	}
	equalTrace(t, sender.sent, []string{"/clipinfo [4 /media/4_loop.mp4 2.5]"})
}

type flakySender struct {
	fail map[int32]bool
	sent int
}

func (f *flakySender) Send(_ string, args ...any) error {
	if f.fail[args[0].(int32)] {
		return errors.New("send failed")
	}
	f.sent++
	return nil
}

func TestNotifyAllContinuesPastFailures(t *testing.T) {
	sender := &flakySender{fail: map[int32]bool{1: true}}
	n := NewNotifier(sender, zerolog.Nop())

	err := n.NotifyAll([]core.ClipInfo{{Slot: 0}, {Slot: 1}, {Slot: 2}})
	if err == nil {
		t.Error("NotifyAll() error = nil, want the failed send")
	}
	if sender.sent != 2 {
		t.Errorf("sent %d notifications, want 2", sender.sent)
	}
}

func TestNotifyAllLoadedWithoutEndpoint(t *testing.T) {
	s, _ := newTestSession(t, 2)
	mustLoad(t, s, 0, "a.mp4")
	if err := s.NotifyAllLoaded(); !errors.Is(err, perrors.ErrEndpointUnset) {
		t.Errorf("NotifyAllLoaded() error = %v, want ErrEndpointUnset", err)
	}
}
