package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/djokobozinov/email-ai-agent/internal/gmail"
	"github.com/djokobozinov/email-ai-agent/internal/instrumentation"
	"github.com/djokobozinov/email-ai-agent/internal/logging"
	"github.com/djokobozinov/email-ai-agent/internal/pipeline"
	"github.com/djokobozinov/email-ai-agent/internal/scheduler"
	"github.com/djokobozinov/email-ai-agent/internal/server"
	"github.com/djokobozinov/email-ai-agent/internal/summarizer"
	"github.com/djokobozinov/email-ai-agent/internal/telegram"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as a long-lived service",
		Long: `Start the agent as a long-running service: an interval scheduler runs
the pipeline periodically, and an HTTP listener exposes trigger endpoints
for external schedulers and manual checks plus health probes. Metrics are
served on a dedicated port when enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
				Enabled:        cfg.Server.MetricsEnabled,
				ServiceName:    "email-ai-agent",
				ServiceVersion: version,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize instrumentation: %w", err)
			}
			defer func() {
				if err := provider.Shutdown(context.Background()); err != nil {
					logger.Error("failed to shut down instrumentation", logging.Err(err))
				}
			}()

			notifier := telegram.NewClient(cfg.Telegram, logger)
			p := pipeline.New(cfg,
				gmail.NewClient(cfg),
				summarizer.NewClient(cfg.OpenAI, logger),
				notifier,
				logger, provider.Metrics())

			srv := server.New(cfg, p, notifier, logger)

			errCh := make(chan error, 2)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("http server failed: %w", err)
				}
			}()

			var metricsSrv *server.MetricsServer
			if provider.Enabled() {
				metricsSrv, err = server.NewMetricsServer(cfg.Server.MetricsAddr, provider, logger)
				if err != nil {
					return fmt.Errorf("failed to create metrics server: %w", err)
				}
				go func() {
					if err := metricsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- fmt.Errorf("metrics server failed: %w", err)
					}
				}()
			}

			go scheduler.New(p, cfg.Pipeline.ScheduleInterval, logger).Run(ctx)

			select {
			case <-ctx.Done():
				logger.Info("shutdown signal received")
			case err := <-errCh:
				stop()
				logger.Error("server failed, shutting down", logging.Err(err))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown failed", logging.Err(err))
			}
			if metricsSrv != nil {
				if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
					logger.Error("metrics server shutdown failed", logging.Err(err))
				}
			}

			return nil
		},
	}
}
