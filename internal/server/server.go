// Package server exposes the operational HTTP endpoints of a running
// command: a health check and the Prometheus metrics of the current
// process. It is enabled by setting METRICS_ADDR.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server serves /health and /metrics while a command runs.
type Server struct {
	logger *otelzap.Logger
	srv    *http.Server
}

// New creates a new server listening on addr.
func New(addr string, logger *otelzap.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		logger: logger,
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Handler returns the HTTP handler the server mounts.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start begins serving in the background. Listen failures are logged
// rather than returned; a command should not fail because its metrics
// endpoint could not bind.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Starting metrics server", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server, draining in-flight scrapes. It uses its own
// deadline so a scrape can finish even when the command context is
// already cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
