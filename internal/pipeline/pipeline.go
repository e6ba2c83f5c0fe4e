package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/djokobozinov/email-ai-agent/internal/config"
	"github.com/djokobozinov/email-ai-agent/internal/gmail"
	"github.com/djokobozinov/email-ai-agent/internal/instrumentation"
	"github.com/djokobozinov/email-ai-agent/internal/logging"
	"github.com/djokobozinov/email-ai-agent/internal/summarizer"
)

// ErrRunInProgress is returned when a run is triggered while a previous run
// has not finished. Overlapping runs are mutually excluded rather than
// queued; the caller may simply retry on the next trigger.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Result is the aggregate outcome of one pipeline run. The count is the
// only promise the pipeline makes; per-message detail exists solely in logs.
type Result struct {
	Processed int `json:"processed"`
}

// MailSource lists and fetches unread messages per account slot.
type MailSource interface {
	ListUnreadIDs(ctx context.Context, account int) ([]string, error)
	FetchMessage(ctx context.Context, id string, account int) (*gmail.Message, error)
}

// Summarizer condenses a message, or reports absence.
type Summarizer interface {
	Configured() bool
	Summarize(ctx context.Context, msg *gmail.Message) *summarizer.Summary
}

// Notifier delivers a summary, reporting success as a boolean.
type Notifier interface {
	Configured() bool
	Notify(ctx context.Context, msg *gmail.Message, summary *summarizer.Summary) bool
}

// Pipeline iterates accounts and their unread messages, summarizing and
// notifying each qualifying message. Failures are isolated at the narrowest
// scope: a failing account never aborts the others, a failing message never
// aborts its account.
type Pipeline struct {
	cfg        *config.Config
	mail       MailSource
	summarizer Summarizer
	notifier   Notifier
	logger     *slog.Logger
	metrics    *instrumentation.Metrics

	// mu excludes overlapping runs.
	mu sync.Mutex
}

// New creates a pipeline over the given collaborators. A nil metrics
// recorder is replaced with a no-op.
func New(cfg *config.Config, mail MailSource, s Summarizer, n Notifier, logger *slog.Logger, metrics *instrumentation.Metrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Pipeline{
		cfg:        cfg,
		mail:       mail,
		summarizer: s,
		notifier:   n,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes one pipeline pass and returns the processed count. The only
// error it can return is ErrRunInProgress; everything else is absorbed,
// logged, and reflected solely in a lower count.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if !p.mu.TryLock() {
		p.metrics.RecordRun(ctx, instrumentation.RunRejected, 0)
		return Result{}, ErrRunInProgress
	}
	defer p.mu.Unlock()

	start := time.Now()

	if !p.cfg.GmailConfigured() || !p.summarizer.Configured() || !p.notifier.Configured() {
		p.logger.Info("pipeline idle: collaborators not fully configured")
		p.metrics.RecordRun(ctx, instrumentation.RunIdle, time.Since(start).Seconds())
		return Result{}, nil
	}

	var processed int
	for _, account := range p.cfg.ConfiguredAccounts() {
		processed += p.processAccount(ctx, account)
	}

	p.logger.Info("pipeline run complete",
		logging.Operation("pipeline.run"),
		slog.Int("processed", processed),
		slog.Duration("duration", time.Since(start)))
	p.metrics.RecordRun(ctx, instrumentation.RunCompleted, time.Since(start).Seconds())

	return Result{Processed: processed}, nil
}

// processAccount lists and processes one account's unread messages. A
// listing failure logs and yields zero; it never propagates.
func (p *Pipeline) processAccount(ctx context.Context, account int) int {
	logger := logging.WithAccount(p.logger, account)

	ids, err := p.mail.ListUnreadIDs(ctx, account)
	if err != nil {
		logger.Error("failed to list unread messages", logging.Err(err))
		p.metrics.RecordCollaboratorError(ctx, instrumentation.ServiceGmail)
		return 0
	}

	processed := 0
	for _, id := range ids {
		if p.processMessage(ctx, id, account, logger) {
			processed++
		}
	}
	return processed
}

// processMessage runs fetch, summarize and notify for a single message.
// Returns true only when the notifier reports success; every other outcome
// is a skip. Skips are deliberate and indistinguishable from failures in
// the final count.
func (p *Pipeline) processMessage(ctx context.Context, id string, account int, logger *slog.Logger) bool {
	msg, err := p.mail.FetchMessage(ctx, id, account)
	if err != nil {
		logger.Error("failed to fetch message", logging.MessageID(id), logging.Err(err))
		p.metrics.RecordCollaboratorError(ctx, instrumentation.ServiceGmail)
		p.metrics.RecordSkip(ctx, instrumentation.SkipError)
		return false
	}
	if msg == nil {
		p.metrics.RecordSkip(ctx, instrumentation.SkipFetch)
		return false
	}

	summary := p.summarizer.Summarize(ctx, msg)
	if summary == nil {
		p.metrics.RecordSkip(ctx, instrumentation.SkipSummarize)
		return false
	}

	// Content-worthiness gate: nothing to say and not a receipt.
	if len(summary.Bullets) == 0 && !summary.IsReceipt {
		p.metrics.RecordSkip(ctx, instrumentation.SkipUnworthy)
		return false
	}

	if !p.notifier.Notify(ctx, msg, summary) {
		logger.Warn("notification delivery failed",
			logging.MessageID(id),
			logging.Sender(msg.From))
		p.metrics.RecordCollaboratorError(ctx, instrumentation.ServiceTelegram)
		p.metrics.RecordSkip(ctx, instrumentation.SkipNotify)
		return false
	}

	logger.Info("message notified",
		logging.MessageID(id),
		logging.Sender(msg.From),
		logging.Status(logging.StatusSuccess))
	p.metrics.RecordProcessed(ctx, account)
	return true
}
