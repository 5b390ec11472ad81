package status

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tessro/slotplayer/internal/core"
)

const (
	defaultStreamInterval = 100 * time.Millisecond
	writeWait             = time.Second
)

type streamMessage struct {
	Type   string         `json:"type"`
	Client string         `json:"client,omitempty"`
	Data   *core.Snapshot `json:"data,omitempty"`
}

// stream pushes the latest snapshot to a websocket client whenever the
// tick counter moved, at most once per stream interval.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log := s.log.With().Str("client", id).Logger()
	log.Info().Str("remote", r.RemoteAddr).Msg("stream client connected")
	defer log.Info().Msg("stream client disconnected")

	// Clients never send anything; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(streamMessage{Type: "hello", Client: id}); err != nil {
		return
	}

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	var (
		lastTick uint64
		sent     bool
	)
	for {
		select {
		case <-closed:
			return
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "player stopping"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			snap, ok := s.latest.Load()
			if !ok || (sent && snap.Tick == lastTick) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(streamMessage{Type: "state", Data: &snap}); err != nil {
				log.Debug().Err(err).Msg("stream write failed")
				return
			}
			lastTick, sent = snap.Tick, true
		}
	}
}
