// Package status serves a read-only JSON view of the player over HTTP.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tessro/slotplayer/internal/core"
)

type envelope map[string]any

// Server exposes the latest published snapshot.
type Server struct {
	latest         *core.LatestSnapshot
	log            zerolog.Logger
	http           *http.Server
	upgrader       websocket.Upgrader
	streamInterval time.Duration

	done     chan struct{}
	doneOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithStreamInterval sets how often /ws clients are updated.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.streamInterval = d
		}
	}
}

// NewServer creates a status server reading from latest.
func NewServer(addr string, latest *core.LatestSnapshot, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		latest: latest,
		log:    log.With().Str("component", "status").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		streamInterval: defaultStreamInterval,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.requestLoggingMw)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/state", s.getState)
	r.Route("/slots", func(r chi.Router) {
		r.Get("/", s.getSlots)
		r.Get("/{slot}", s.getSlot)
	})
	r.Get("/ws", s.stream)

	return r
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		s.doneOnce.Do(func() { close(s.done) })
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("status server shutdown")
		}
	})
	defer stop()

	s.log.Info().Str("address", ln.Addr().String()).Msg("status endpoint listening")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) snapshot(w http.ResponseWriter) (core.Snapshot, bool) {
	snap, ok := s.latest.Load()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, envelope{"error": "player not started"})
	}
	return snap, ok
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": snap})
}

func (s *Server) getSlots(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	clips := snap.Clips
	if clips == nil {
		clips = []core.ClipInfo{}
	}
	writeJSON(w, http.StatusOK, envelope{"data": clips})
}

func (s *Server) getSlot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil || idx < 0 || idx >= snap.NumSlots {
		writeJSON(w, http.StatusNotFound, envelope{"error": "slot out of range"})
		return
	}
	for _, c := range snap.Clips {
		if c.Slot == idx {
			writeJSON(w, http.StatusOK, envelope{"data": c})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, envelope{"error": "slot not loaded"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
