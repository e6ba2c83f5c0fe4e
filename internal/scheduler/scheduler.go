// Package scheduler drives periodic pipeline runs in serve mode.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/djokobozinov/email-ai-agent/internal/logging"
	"github.com/djokobozinov/email-ai-agent/internal/pipeline"
)

// Runner executes one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// Scheduler triggers the runner on a fixed interval. A tick that fires
// while a run is still in flight is dropped, not queued; the lookback
// window covers the gap on the next tick.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// New creates a scheduler ticking at the given interval.
func New(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run ticks until ctx is cancelled. It blocks; run it in a goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	res, err := s.runner.Run(ctx)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		s.logger.Info("skipping tick: previous run still in flight")
		return
	}
	if err != nil {
		s.logger.Error("scheduled run failed", logging.Err(err))
		return
	}
	s.logger.Info("scheduled run complete",
		logging.Operation("scheduler.tick"),
		slog.Int("processed", res.Processed))
}
