// Package server provides HTTP server management and lifecycle handling for the pharmainsight API.
// It wires the middleware chain and routes, and shuts down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/giygas/pharmainsight-api/config"
	"github.com/giygas/pharmainsight-api/handlers"
	"github.com/giygas/pharmainsight-api/interfaces"
	"github.com/giygas/pharmainsight-api/logging"
	"github.com/giygas/pharmainsight-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const bucketCleanupInterval = 30 * time.Minute

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	config      *config.Config
	httpHandler interfaces.HTTPHandler
	accounts    *handlers.AccountHandler
	limiter     *RateLimiter
}

// NewServer creates a new server instance. A nil accountHandler leaves the
// account routes unregistered.
func NewServer(cfg *config.Config, httpHandler interfaces.HTTPHandler, accountHandler *handlers.AccountHandler) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:        router,
			Addr:           cfg.Address + ":" + cfg.Port,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second, // above the label API timeout
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
		},
		router:      router,
		config:      cfg,
		httpHandler: httpHandler,
		accounts:    accountHandler,
		limiter:     NewRateLimiter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func requestLogger() *slog.Logger {
	if logging.DefaultLoggingService != nil {
		return logging.DefaultLoggingService.Logger
	}
	return slog.Default()
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	allowDirect := s.config.Env == config.EnvDevelopment || s.config.Env == config.EnvTest

	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware(allowDirect)) // before RealIP so it sees the socket address
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(requestLogger()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
	s.router.Use(middleware.Compress(5, "application/json", "application/yaml", "text/plain"))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/medicine/{name}", s.httpHandler.LookupMedicine)
	s.router.Get("/medicine", s.httpHandler.LookupMedicineQuery)
	s.router.Post("/search", s.httpHandler.SearchForm)
	s.router.Get("/health", s.httpHandler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	if s.accounts != nil {
		s.router.Route("/accounts", func(r chi.Router) {
			r.Post("/", s.accounts.CreateAccount)
			r.Post("/login", s.accounts.Login)
			r.Get("/{id}", s.accounts.GetAccount)
		})
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusNotFound, "not_found", "Route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusMethodNotAllowed, "invalid_input", "Method not allowed")
	})
}

// Start serves until Shutdown is called. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.limiter.StartCleanup(bucketCleanupInterval)

	logging.Info(fmt.Sprintf("Starting server at: %s", s.server.Addr),
		"env", s.config.Env.String(), "accounts", s.accounts != nil)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
