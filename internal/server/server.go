// Package server is the HTTP host shell for the gallery: it feeds JSON input
// events to the results controller and returns its render snapshot.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Sternrassler/character-gallery/pkg/controller"
	"github.com/Sternrassler/character-gallery/pkg/logging"
	"github.com/Sternrassler/character-gallery/pkg/metrics"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds input event payloads.
const maxBodyBytes = 1 << 10

// Gallery is the controller surface the server drives.
type Gallery interface {
	SetSearchText(ctx context.Context, text string) error
	SetPage(ctx context.Context, n int) error
	Previous(ctx context.Context) error
	Next(ctx context.Context) error
	FetchResults(ctx context.Context) error
	Snapshot() controller.View
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server routes HTTP requests to a Gallery.
type Server struct {
	gallery Gallery
	ready   Pinger
	logger  zerolog.Logger
	mux     *http.ServeMux
}

// New builds the handler tree. ready may be nil.
func New(gallery Gallery, ready Pinger) *Server {
	s := &Server{
		gallery: gallery,
		ready:   ready,
		logger:  logging.NewLogger("server"),
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("GET /api/view", s.handleView)
	s.mux.HandleFunc("POST /api/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/page", s.handlePage)
	s.mux.HandleFunc("POST /api/prev", s.handlePrev)
	s.mux.HandleFunc("POST /api/next", s.handleNext)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	return s
}

// ServeHTTP implements http.Handler with request logging.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", time.Since(start)).
		Msg("Handled request")
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting gallery server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down gallery server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ping(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "READY")
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeView(w)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	s.apply(w, s.gallery.SetSearchText(eventContext(r), body.Text))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Page *int `json:"page"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Page == nil {
		writeError(w, http.StatusBadRequest, "page is required")
		return
	}
	s.apply(w, s.gallery.SetPage(eventContext(r), *body.Page))
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	s.apply(w, s.gallery.Previous(eventContext(r)))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.apply(w, s.gallery.Next(eventContext(r)))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.apply(w, s.gallery.FetchResults(eventContext(r)))
}

// eventContext detaches an input event from its request. The controller is
// shared by every client, so one client hanging up must not cancel a fetch
// whose result everyone sees. The upstream client timeout still bounds it.
func eventContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// apply answers with the current view. Upstream failures are part of the
// view's error state, and a superseded fetch is answered with whatever is
// current, so neither turns into an HTTP error.
func (s *Server) apply(w http.ResponseWriter, err error) {
	if err != nil && !errors.Is(err, controller.ErrSuperseded) {
		s.logger.Debug().Err(err).Msg("Input event ended with upstream error")
	}
	s.writeView(w)
}

func (s *Server) writeView(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, s.gallery.Snapshot())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
