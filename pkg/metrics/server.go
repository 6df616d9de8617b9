package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes /metrics, /health and, when a status source is set, /status.
type Server struct {
	httpServer *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*http.ServeMux)

// WithStatus serves the JSON encoding of status() at /status.
func WithStatus(status func() any) ServerOption {
	return func(mux *http.ServeMux) {
		mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(status()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		})
	}
}

// NewServer creates the HTTP server for addr (e.g. ":9090"). It does not listen until Start.
func NewServer(addr string, gatherer prometheus.Gatherer, opts ...ServerOption) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck // best-effort health response
	})
	for _, opt := range opts {
		opt(mux)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves in the background. The returned channel yields a listen error, if any, and
// is closed when the server stops.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()
	return errCh
}

// Shutdown stops the server, waiting for active requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
