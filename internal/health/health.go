// Package health provides the liveness and readiness endpoints.
//
// /healthz reports whether the process is up and the engine was loaded.
// /readyz additionally reports the synthesis gate counters so an operator can
// see whether the single engine is busy and how many requests are waiting.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nadzzz/voicegate/internal/gate"
)

// StatsSource reports synthesis gate counters.
type StatsSource interface {
	Stats() gate.Stats
}

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	stats  StatsSource
	ready  atomic.Bool
	server *http.Server
}

// New creates a new health check server. stats may be nil.
func New(port int, stats StatsSource) *Server {
	return &Server{port: port, stats: stats}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Ready reports the current readiness.
func (s *Server) Ready() bool { return s.ready.Load() }

type status struct {
	Status string      `json:"status"`
	Gate   *gate.Stats `json:"gate,omitempty"`
}

// Handler returns the health router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.write(w, status{})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		var st status
		if s.stats != nil {
			gs := s.stats.Stats()
			st.Gate = &gs
		}
		s.write(w, st)
	})

	return r
}

func (s *Server) write(w http.ResponseWriter, st status) {
	w.Header().Set("Content-Type", "application/json")
	if !s.ready.Load() {
		st.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		st.Status = "ok"
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(st)
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
