package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	artemis "github.com/botobag/artemis/graphql"

	"github.com/c360/blogstream/errors"
	"github.com/c360/blogstream/health"
	"github.com/c360/blogstream/metric"
)

// Server manages the HTTP server for the GraphQL endpoint, the
// WebSocket subscription endpoint, the playground and the operational
// endpoints.
type Server struct {
	config     Config
	resolver   *Resolver
	schema     *artemis.Schema
	logger     *slog.Logger
	registry   *metric.Registry
	monitor    *health.Monitor
	httpServer *http.Server
	mux        *http.ServeMux

	// Lifecycle
	running  bool
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once // Ensures stopChan is closed exactly once
}

// NewServer creates a new GraphQL HTTP server
func NewServer(config Config, resolver *Resolver, logger *slog.Logger, registry *metric.Registry) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Server", "NewServer", "config validation")
	}

	if resolver == nil {
		return nil, errors.WrapFatal(fmt.Errorf("resolver is nil"), "Server", "NewServer",
			"resolver is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	schema, err := resolver.BuildSchema()
	if err != nil {
		return nil, errors.WrapFatal(err, "Server", "NewServer", "schema construction")
	}

	return &Server{
		config:   config,
		resolver: resolver,
		schema:   schema,
		logger:   logger,
		registry: registry,
		monitor:  health.NewMonitor(),
		mux:      http.NewServeMux(),
		stopChan: make(chan struct{}),
	}, nil
}

// Schema returns the compiled schema, mainly for tests
func (s *Server) Schema() *artemis.Schema {
	return s.schema
}

// Setup configures the HTTP server and routes
func (s *Server) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metrics *metric.Metrics
	if s.registry != nil {
		metrics = s.registry.Metrics
	}

	s.mux.Handle(s.config.Path,
		NewHandler(s.schema, s.logger, metrics, s.config.MaxBodyBytes))
	s.mux.Handle(s.config.WSPath,
		NewSubscriptionHandler(s.schema, s.resolver.Service(), s.logger, metrics))

	s.mux.HandleFunc("/health", s.handleHealth)

	if s.registry != nil {
		s.mux.Handle("/metrics", s.metricsHandler())
	}

	if s.config.EnablePlayground {
		s.mux.Handle("/", playground.Handler("BlogStream GraphQL", s.config.Path))
		s.logger.Info("GraphQL Playground enabled",
			"url", fmt.Sprintf("http://%s/", s.config.BindAddress))
	}

	var handler http.Handler = s.mux
	if s.config.EnableCORS {
		handler = s.corsMiddleware(handler)
	}

	s.httpServer = &http.Server{
		Addr:         s.config.BindAddress,
		Handler:      handler,
		ReadTimeout:  s.config.Timeout(),
		WriteTimeout: s.config.Timeout(),
		IdleTimeout:  60 * time.Second,
	}

	s.monitor.UpdateHealthy("graphql-server", "configured")

	s.logger.Info("Server configured",
		"address", s.config.BindAddress,
		"path", s.config.Path,
		"ws_path", s.config.WSPath,
		"timeout", s.config.Timeout())

	return nil
}

// Handler returns the configured root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.httpServer == nil {
		return s.mux
	}
	return s.httpServer.Handler
}

// Start starts the HTTP server
// The ready channel is closed when the server is ready to accept connections
func (s *Server) Start(ctx context.Context, ready chan<- struct{}) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Server", "Start", "server already running")
	}
	if s.httpServer == nil {
		s.mu.Unlock()
		return errors.WrapFatal(errors.ErrNotStarted, "Server", "Start", "Setup must be called first")
	}
	s.running = true
	server := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.logger.Info("Server starting", "address", s.config.BindAddress)

		// ListenAndServe blocks after binding the socket, so signal
		// ready immediately before the call
		if ready != nil {
			close(ready)
		}

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
			select {
			case errChan <- err:
			case <-ctx.Done():
			case <-s.stopChan:
			}
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Server context cancelled, shutting down")
		return s.Stop(30 * time.Second)

	case <-s.stopChan:
		s.logger.Info("Server stop requested")
		return nil

	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.monitor.UpdateUnhealthy("graphql-server", err.Error())
		return errors.WrapFatal(err, "Server", "Start", "HTTP server failed")
	}
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil // Already stopped
	}
	server := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Server stopping")

	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown server gracefully", "error", err)
		return errors.WrapFatal(err, "Server", "Stop", "graceful shutdown failed")
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Server stopped")
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// handleHealth reports the aggregated server health together with the
// current entity counts.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	users, posts, comments := s.resolver.Service().Counts()

	overall := s.monitor.Overall("blogstream")
	response := struct {
		health.Status
		Entities map[string]int `json:"entities"`
	}{
		Status: overall,
		Entities: map[string]int{
			"users":    users,
			"posts":    posts,
			"comments": comments,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if !overall.IsHealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("failed to write health response", "error", err)
	}
}

// metricsHandler refreshes the entity gauges on every scrape before
// delegating to the Prometheus handler.
func (s *Server) metricsHandler() http.Handler {
	inner := s.registry.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, posts, comments := s.resolver.Service().Counts()
		s.registry.Metrics.Entities.WithLabelValues("users").Set(float64(users))
		s.registry.Metrics.Entities.WithLabelValues("posts").Set(float64(posts))
		s.registry.Metrics.Entities.WithLabelValues("comments").Set(float64(comments))
		inner.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range s.config.CORSOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
