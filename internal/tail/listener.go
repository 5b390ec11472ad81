package tail

import (
	"context"
	"fmt"
	"time"

	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/osc"
	"github.com/tessro/slotplayer/internal/player"
)

// ParseClipInfo decodes a /clipinfo slot path duration notification.
func ParseClipInfo(msg osc.Message) (core.ClipInfo, error) {
	if msg.Address != player.ClipInfoAddress {
		return core.ClipInfo{}, fmt.Errorf("unexpected address %s", msg.Address)
	}
	slot, err := msg.IntAt(0)
	if err != nil {
		return core.ClipInfo{}, err
	}
	path, err := msg.StringAt(1)
	if err != nil {
		return core.ClipInfo{}, err
	}
	dur, err := msg.FloatAt(2)
	if err != nil {
		return core.ClipInfo{}, err
	}
	return core.ClipInfo{Slot: slot, Path: path, Duration: dur}, nil
}

// Listen converts inbound notifications into events until ctx is done or
// messages is closed. Messages that are not clip notifications are passed
// to onOther if it is set.
func Listen(ctx context.Context, messages <-chan osc.Message, onOther func(osc.Message, error)) <-chan Event {
	events := make(chan Event, 16)
	seen := map[int]string{}

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				info, err := ParseClipInfo(msg)
				if err != nil {
					if onOther != nil {
						onOther(msg, err)
					}
					continue
				}
				now := time.Now()
				info.LoadedAt = now

				t := EventClipLoaded
				if prev, ok := seen[info.Slot]; ok && prev != info.Path {
					t = EventClipReplaced
				}
				seen[info.Slot] = info.Path

				select {
				case events <- Event{Type: t, Timestamp: now, Slot: info.Slot, Clip: &info}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events
}
