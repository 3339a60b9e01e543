package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/franckalain/winelens/internal/auth"
	"github.com/franckalain/winelens/internal/clientconfig"
	"github.com/franckalain/winelens/internal/ml"
	"github.com/franckalain/winelens/internal/search"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the HTTP server settings
type Config struct {
	Port            string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 10 << 20
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		// label analysis waits on the vision model
		c.WriteTimeout = 2 * time.Minute
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
}

// Server exposes the label analysis, image search and health endpoints
type Server struct {
	config     Config
	verifier   auth.Verifier
	model      ml.Model
	searcher   search.Searcher
	client     *clientconfig.ClientConfig
	httpServer *http.Server
}

// New creates a server. All collaborators are built by the caller and
// only read afterwards.
func New(cfg Config, verifier auth.Verifier, model ml.Model, searcher search.Searcher, client *clientconfig.ClientConfig) *Server {
	cfg.setDefaults()

	s := &Server{
		config:   cfg,
		verifier: verifier,
		model:    model,
		searcher: searcher,
		client:   client,
	}

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort("", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(clientconfig.PathAnalyzeWineLabel, s.withMiddleware(s.protected(s.handleAnalyzeWineLabel)))
	mux.HandleFunc(clientconfig.PathSearchWineImage, s.withMiddleware(s.protected(s.handleSearchWineImage)))
	mux.HandleFunc(clientconfig.PathHealth, s.withMiddleware(s.handleHealth))
	mux.HandleFunc(clientconfig.PathClientConfig, s.withMiddleware(s.handleClientConfig))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	slog.Info("starting server", "addr", s.httpServer.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}
