// Package health serves the plain HTTP liveness endpoint next to the gRPC
// service.
package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	checkTimeout    = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Server struct {
	address string
	checks  map[string]Check
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, checks map[string]Check) *Server {
	return &Server{address: address, checks: checks, logger: l.With("module", "health_server")}
}

// Router answers GET /health with 200 "OK" when every check passes and
// 503 listing the failing checks otherwise.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/health", s.handleHealth)
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	var failed []string
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", "check", name, "error", err)
			failed = append(failed, name)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if len(failed) > 0 {
		sort.Strings(failed)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable: " + strings.Join(failed, ", ")))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Run serves until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	server := &http.Server{Handler: s.Router(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if err := server.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
