package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrAccount = "account"
	attrResult  = "result"
	attrReason  = "reason"
	attrService = "service"
)

// Run results.
const (
	RunCompleted = "completed"
	RunRejected  = "rejected"
	RunIdle      = "idle"
)

// Skip reasons.
const (
	SkipFetch     = "fetch"
	SkipSummarize = "summarize"
	SkipUnworthy  = "unworthy"
	SkipNotify    = "notify"
	SkipError     = "error"
)

// Collaborator service names.
const (
	ServiceGmail    = "gmail"
	ServiceOpenAI   = "openai"
	ServiceTelegram = "telegram"
)

// Metrics records pipeline observability metrics. The zero value is a valid
// no-op recorder.
type Metrics struct {
	runsTotal          metric.Int64Counter
	runDuration        metric.Float64Histogram
	processedTotal     metric.Int64Counter
	skippedTotal       metric.Int64Counter
	collaboratorErrors metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.runsTotal, err = meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_runs_total counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_run_duration_seconds histogram: %w", err)
	}

	m.processedTotal, err = meter.Int64Counter(
		"messages_processed_total",
		metric.WithDescription("Total number of messages successfully notified"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_processed_total counter: %w", err)
	}

	m.skippedTotal, err = meter.Int64Counter(
		"messages_skipped_total",
		metric.WithDescription("Total number of messages skipped, by reason"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_skipped_total counter: %w", err)
	}

	m.collaboratorErrors, err = meter.Int64Counter(
		"collaborator_errors_total",
		metric.WithDescription("Total number of collaborator call failures, by service"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collaborator_errors_total counter: %w", err)
	}

	return m, nil
}

// RecordRun records one pipeline run with its outcome and duration.
func (m *Metrics) RecordRun(ctx context.Context, result string, seconds float64) {
	if m.runsTotal == nil {
		return
	}
	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
	m.runDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordProcessed records one successfully notified message.
func (m *Metrics) RecordProcessed(ctx context.Context, account int) {
	if m.processedTotal == nil {
		return
	}
	m.processedTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int(attrAccount, account)))
}

// RecordSkip records one skipped message with its reason.
func (m *Metrics) RecordSkip(ctx context.Context, reason string) {
	if m.skippedTotal == nil {
		return
	}
	m.skippedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RecordCollaboratorError records one failed collaborator call.
func (m *Metrics) RecordCollaboratorError(ctx context.Context, service string) {
	if m.collaboratorErrors == nil {
		return
	}
	m.collaboratorErrors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrService, service)))
}
