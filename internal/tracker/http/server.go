// Package http serves the report over a small JSON surface.
package http

import (
	"encoding/json"
	"log/slog"
	stdhttp "net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"issueranker.shikanime.studio/internal/tracker"
)

// Server holds handlers and dependencies for the issue ranking HTTP server.
type Server struct {
	t   *tracker.Tracker
	mux *stdhttp.ServeMux
}

// NewServer initializes a Server and mounts the report and health handlers.
func NewServer(t *tracker.Tracker) *Server {
	mux := stdhttp.NewServeMux()
	s := &Server{t: t, mux: mux}
	mux.HandleFunc("GET /repository-report", s.handleReport)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

// ListenAndServe starts the HTTP server on addr using the internal mux.
func (s *Server) ListenAndServe(addr string) error {
	slog.Info("server starting", "addr", addr)
	return stdhttp.ListenAndServe(addr, otelhttp.NewHandler(s.mux, "http.server"))
}

// handleReport always answers 200 with best-effort content: upstream or
// storage failures degrade the report body instead of surfacing an error.
func (s *Server) handleReport(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	report, err := s.t.GenerateReport(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to generate report", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdhttp.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"report": report})
}

func (s *Server) handleHealth(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
