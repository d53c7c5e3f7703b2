package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ssmendon/sdnprobe/internal/core/ports"
)

// Server exposes a small status/progress API alongside the websocket hub.
type Server struct {
	Hub      *Hub
	Sessions ports.SessionRepository
	Reports  ports.ReportExporter
}

// NewServer builds a Server; Sessions and Reports may be nil if the caller
// only needs the live progress feed.
func NewServer(hub *Hub, sessions ports.SessionRepository, reports ports.ReportExporter) *Server {
	return &Server{Hub: hub, Sessions: sessions, Reports: reports}
}

// Router builds the gorilla/mux router for this server's endpoints.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.Hub.HandleWebSocket)
	r.HandleFunc("/api/sessions", s.handleListSessions).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/executive", s.handleGenerateReport).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil {
		http.Error(w, "session history unavailable", http.StatusServiceUnavailable)
		return
	}

	sessions, err := s.Sessions.ListSessions(r.Context(), 100)
	if err != nil {
		http.Error(w, "failed to list sessions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil || s.Reports == nil {
		http.Error(w, "reporting unavailable", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		OutPath string `json:"out_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OutPath == "" {
		http.Error(w, "out_path is required", http.StatusBadRequest)
		return
	}

	sessions, err := s.Sessions.ListSessions(r.Context(), 0)
	if err != nil {
		http.Error(w, "failed to list sessions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.Reports.Export(r.Context(), sessions, req.OutPath); err != nil {
		http.Error(w, "failed to export report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "generated", "path": req.OutPath})
}

// ListenAndServe starts the HTTP server on addr, returning when ctx is
// cancelled or the server stops.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	// "sdnprobe-server" mirrors the teacher's span-name-as-second-arg idiom.
	instrumentedHandler := otelhttp.NewHandler(s.Router(), "sdnprobe-server")
	srv := &http.Server{Addr: addr, Handler: instrumentedHandler}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
