package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"cashbox/internal/automation"
	"cashbox/internal/model"
)

// Scheduler is the control surface the admin endpoints drive.
type Scheduler interface {
	Status() automation.Status
	RunNow(ctx context.Context)
}

// OperationLogReader serves the per-merchant operations history.
type OperationLogReader interface {
	GetOperationsLog(ctx context.Context, filter model.OperationLogFilter) ([]model.OperationLogEntry, error)
}

// Projector serves the upcoming-operations view.
type Projector interface {
	NextOperations(ctx context.Context, clientID int64, days, limit int) ([]automation.ScheduledOperation, error)
}

// TableExporter renders the audit tables into a workbook for download.
type TableExporter interface {
	ExportTables(ctx context.Context) ([]byte, error)
}

// Pinger reports backend liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain function, e.g. (*sql.DB).PingContext, to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Dependencies are the collaborators the handlers read from. Redis may be nil
// when caching is disabled.
type Dependencies struct {
	Scheduler Scheduler
	Log       OperationLogReader
	Projector Projector
	Exporter  TableExporter
	DB        Pinger
	Redis     Pinger
}

// Server exposes health, metrics and the automation admin API.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
	deps       Dependencies
}

// New creates the HTTP server on addr.
func New(addr string, deps Dependencies, logger zerolog.Logger) *Server {
	server := &Server{
		logger: logger.With().Str("component", "http").Logger(),
		deps:   deps,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("GET /readyz", server.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /status", server.handleStatus)
	mux.HandleFunc("GET /clients/{id}/operations", server.handleOperations)
	mux.HandleFunc("GET /clients/{id}/next-operations", server.handleNextOperations)
	mux.HandleFunc("POST /admin/run-check", server.handleRunCheck)
	mux.HandleFunc("GET /admin/export", server.handleExport)

	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server
}

// Start begins listening for incoming HTTP requests.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"ready": ready, "checks": checks})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Scheduler.Status())
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	filter := model.OperationLogFilter{ClientID: clientID}
	if v := r.URL.Query().Get("type"); v != "" {
		filter.OperationType = model.OperationType(v)
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = model.OperationStatus(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}

	entries, err := s.deps.Log.GetOperationsLog(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Int64("client_id", clientID).Msg("operations log query failed")
		http.Error(w, "failed to load operations log", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"client_id": clientID, "operations": entries})
}

func (s *Server) handleNextOperations(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	days := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 10)

	ops, err := s.deps.Projector.NextOperations(r.Context(), clientID, days, limit)
	if err != nil {
		s.logger.Error().Err(err).Int64("client_id", clientID).Msg("next-operations query failed")
		http.Error(w, "failed to compute upcoming operations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"client_id": clientID, "next_operations": ops})
}

func (s *Server) handleRunCheck(w http.ResponseWriter, r *http.Request) {
	s.logger.Info().Msg("manual scheduler check requested")
	s.deps.Scheduler.RunNow(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "check completed"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.logger.Info().Msg("full table export requested")
	data, err := s.deps.Exporter.ExportTables(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("table export failed")
		http.Error(w, "failed to export tables", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="cashbox-export-%s.xlsx"`, time.Now().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error().Err(err).Msg("write export response failed")
	}
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode json", http.StatusInternalServerError)
	}
}
