// Package core provides the API chassis for the floe service.
// It creates a chi router and enforces cross-cutting concerns -- panic
// recovery, request correlation, logging, CORS, and error handling -- before
// requests reach domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"floe/internal/config"
)

// MetricsCollector defines the interface for recording API telemetry.
type MetricsCollector interface {
	// RecordRequest records API request metrics including latency and count.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// RouteRegistrar registers a group of domain handler routes on a router.
// Registrars are populated by the application entry point; the indirection
// avoids import cycles between core and handler packages.
type RouteRegistrar func(r chi.Router)

// Server encapsulates all dependencies for the floe API, allowing for easy
// injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics MetricsCollector

	// V1RouteRegistrars contains the domain route groups mounted under /v1.
	V1RouteRegistrars []RouteRegistrar

	// HealthProbes are checked concurrently by the /health endpoint.
	HealthProbes []HealthProbe

	// MetricsHandler, when set, is mounted at GET /metrics.
	MetricsHandler http.Handler

	// Internal router
	router *chi.Mux
}

// NewServer initializes dependencies, sets up the router, and prepares the
// server for route mounting. It performs a fail-fast check on critical
// dependencies.
//
// The caller is responsible for mounting routes (via MountRoutes) after
// construction. This separation allows tests to customize route registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
// This is used internally by route-mounting methods and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources, closing any
// health probe that owns a connection pool.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	for _, probe := range s.HealthProbes {
		if closer, ok := probe.(interface{ Close() }); ok {
			closer.Close()
		}
	}

	s.Logger.Info("server shutdown complete")
	return nil
}
