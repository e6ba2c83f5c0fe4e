// Package server provides the HTTP surface of the email-ai-agent service.
//
// The main listener exposes the pipeline trigger endpoints
// (/api/cron/process for schedulers, /api/check-mail and /api/telegram-test
// for manual checks) together with /healthz and /readyz probes. Prometheus
// metrics are served by a separate MetricsServer on a dedicated port so
// operational data never shares a listener with the trigger API.
package server
