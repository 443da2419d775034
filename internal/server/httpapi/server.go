// Package httpapi exposes the upload/download pipeline over HTTP. The
// surface is deliberately thin: multipart in, raw bytes out, errors
// mapped from the pipeline's sentinel taxonomy to status codes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/ledgervault/internal/logging"
	"github.com/dmitrijs2005/ledgervault/internal/server/registry"
	"github.com/dmitrijs2005/ledgervault/internal/vault"
)

// Vault is the subset of the pipeline service the handlers need.
type Vault interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
	Download(ctx context.Context, txID string) (*vault.File, error)
}

// Server is the HTTP front of the service.
type Server struct {
	server  *http.Server
	vault   Vault
	uploads registry.Repository
	logger  logging.Logger

	shutdownTimeout time.Duration
}

// Options carries the HTTP-specific settings.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// NewServer wires the handlers and builds the http.Server. The upload
// registry may be nil, in which case the listing endpoint reports the
// index as unavailable.
func NewServer(opts Options, v Vault, uploads registry.Repository, logger logging.Logger) *Server {
	s := &Server{
		vault:           v,
		uploads:         uploads,
		logger:          logger.With("module", "httpapi"),
		shutdownTimeout: opts.ShutdownTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /files/upload", s.handleUpload)
	mux.HandleFunc("GET /files/download/{id}", s.handleDownload)
	mux.HandleFunc("GET /files", s.handleList)

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.requestLogMiddleware(mux),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Run starts the listener and blocks until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "starting HTTP server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// statusRecorder captures the status code written by a handler so the
// request log can include it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
