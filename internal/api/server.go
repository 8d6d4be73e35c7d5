// Package api serves archived runs over HTTP. Every endpoint is a read-only
// GET; nothing here can start, change, or resume a simulation.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"github.com/talgya/starfield/internal/engine"
	"github.com/talgya/starfield/internal/persistence"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// Store is the part of the archive the viewer reads.
type Store interface {
	Runs() ([]persistence.RunRecord, error)
	Result(runID string) (persistence.ResultRecord, error)
	Snapshot(runID string, tick uint64) (engine.Report, error)
	RecentEvents(runID, category string, limit int) ([]engine.Event, error)
}

var _ Store = (*persistence.Archive)(nil)

// Server serves the archive.
type Server struct {
	Store   Store
	Addr    string
	Origins []string // CORS allow-list
	Limiter *RateLimiter
}

// Handler returns the routed, CORS-wrapped and rate-limited handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/runs", s.handleRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}/result", s.handleResult)
	mux.HandleFunc("GET /api/v1/runs/{id}/snapshots/{tick}", s.handleSnapshot)
	mux.HandleFunc("GET /api/v1/runs/{id}/events", s.handleEvents)

	var h http.Handler = mux
	if s.Limiter != nil {
		h = s.Limiter.Middleware(h)
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.Origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(h)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if s.Limiter != nil {
		go s.Limiter.Sweep(ctx, time.Minute)
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("archive viewer starting", "addr", s.Addr, "origins", s.Origins)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("archive viewer stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Store.Runs()
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []persistence.RunRecord{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.Store.Result(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	tick, err := strconv.ParseUint(r.PathValue("tick"), 10, 64)
	if err != nil {
		http.Error(w, "invalid tick", http.StatusBadRequest)
		return
	}
	rep, err := s.Store.Snapshot(r.PathValue("id"), tick)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rep)
}

// handleEvents returns the newest events of a run. ?limit caps the count
// (default 50, at most 500); ?category filters.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxEventLimit {
			limit = n
		}
	}
	events, err := s.Store.RecentEvents(r.PathValue("id"), r.URL.Query().Get("category"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, events)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	slog.Error("archive query failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("response write failed", "error", err)
	}
}
