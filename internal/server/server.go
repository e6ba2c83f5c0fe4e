package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/djokobozinov/email-ai-agent/internal/config"
)

const (
	// DefaultReadHeaderTimeout bounds header reads on the trigger API.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds a full request cycle. Pipeline runs happen
	// inline in the handler, so this must cover a complete run.
	DefaultWriteTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the keep-alive idle timeout.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// Server is the main HTTP listener: trigger endpoints plus health probes.
type Server struct {
	cfg      *config.Config
	runner   Runner
	notifier RawNotifier
	logger   *slog.Logger
	health   *HealthChecker

	httpServer *http.Server
}

// New creates a Server over the given pipeline runner and notifier.
func New(cfg *config.Config, runner Runner, notifier RawNotifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		runner:   runner,
		notifier: notifier,
		logger:   logger,
		health:   NewHealthChecker(),
	}
}

// Handler builds the route table. Exposed so tests can drive the mux
// without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cron/process", s.handleCronProcess)
	mux.HandleFunc("/api/check-mail", s.handleCheckMail)
	mux.HandleFunc("/api/telegram-test", s.handleTelegramTest)
	s.health.RegisterHealthEndpoints(mux)
	return mux
}

// Health exposes the health checker so the lifecycle owner can flip
// readiness during shutdown.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Start starts the server in a blocking manner.
// Call this in a goroutine if you need non-blocking operation.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.logger.Info("starting http server", slog.String("addr", s.cfg.Server.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server, failing readiness first so
// load balancers drain before connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	s.health.SetReady(false)
	if s.httpServer != nil {
		s.logger.Info("shutting down http server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
