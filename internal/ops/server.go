// Package ops serves the operational HTTP endpoint: health, metrics,
// and recent job events for debugging.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mave-full/konspektbot/internal/domain"
	"github.com/Mave-full/konspektbot/internal/jobs"
)

// Server is the operational HTTP server. It binds to a local address
// and is not meant to be exposed publicly.
type Server struct {
	addr   string
	bus    *jobs.EventBus
	report domain.DiagnosticReport
	logger *slog.Logger
	srv    *http.Server
}

// NewServer constructs the ops server with the startup diagnostic
// report and the shared event bus.
func NewServer(addr string, bus *jobs.EventBus, report domain.DiagnosticReport, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:   addr,
		bus:    bus,
		report: report,
		logger: logger.With("component", "ops"),
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/events", s.handleEvents)
	mux.HandleFunc("/debug/diagnostics", s.handleDiagnostics)

	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("ops endpoint listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ops endpoint failed", "error", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// handleHealthz reports process liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleEvents returns events with sequence greater than ?since=N.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid since parameter", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	events := s.bus.Since(since)
	if events == nil {
		events = []jobs.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

// handleDiagnostics returns the startup diagnostic report.
func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.report)
}
