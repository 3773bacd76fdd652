// Package status serves the state of a running search over HTTP and provides
// the client used by `ipsearch status`.
//
// Endpoints:
//
//	GET /health    200 while the process is up
//	GET /progress  Progress document (latest snapshot + run id)
//	GET /workers   per-worker status, ordered by id
//	GET /metrics   Prometheus metrics
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dreamware/ipsearch/internal/metrics"
	"github.com/dreamware/ipsearch/internal/progress"
	"github.com/dreamware/ipsearch/internal/search"
)

// Source is the view of a run the server exposes. *search.Coordinator
// implements it.
type Source interface {
	RunID() string
	Snapshot() progress.Snapshot
	Registry() *search.Registry
	Cancelled() bool
}

// Progress is the body of GET /progress.
type Progress struct {
	RunID     string            `json:"run_id"`
	Snapshot  progress.Snapshot `json:"snapshot"`
	Cancelled bool              `json:"cancelled"`
}

// Server is the status HTTP server.
type Server struct {
	src    Source
	logger *zap.Logger
	srv    *http.Server
	ln     net.Listener
}

// NewServer builds a server for src. gatherer may be nil to disable /metrics.
func NewServer(addr string, src Source, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{src: src, logger: logger}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the status routes.
func (s *Server) Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/progress", s.handleProgress)
	mux.HandleFunc("/workers", s.handleWorkers)
	if gatherer != nil {
		mux.Handle("/metrics", metrics.Handler(gatherer))
	}
	return mux
}

// Start binds the listen address and serves in the background. The bound
// address is available from Addr once Start returns.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("status server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server failed", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	s.logger.Info("status server stopped")
	return err
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, Progress{
		RunID:     s.src.RunID(),
		Snapshot:  s.src.Snapshot(),
		Cancelled: s.src.Cancelled(),
	})
}

func (s *Server) handleWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, struct {
		Workers []search.WorkerStatus `json:"workers"`
	}{Workers: s.src.Registry().All()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
