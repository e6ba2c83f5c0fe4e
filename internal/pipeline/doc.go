// Package pipeline implements the mail-ingestion orchestrator: iterate the
// configured accounts in ascending slot order, list each account's unread
// messages within the lookback window, then fetch, summarize and notify
// each message in source order.
//
// Failure isolation is the central design property. Listing failures are
// scoped to their account, fetch/summarize/notify failures to their
// message, and nothing escapes Run except ErrRunInProgress. The run's only
// result is the processed count; callers needing finer diagnosis read the
// logs or metrics.
//
// Runs are strictly sequential and mutually excluded: a trigger that fires
// while a run is in flight is rejected, not queued. Since messages are
// never marked read, re-running inside the lookback window re-notifies the
// same messages; the window, not the pipeline, is the deduplication
// mechanism.
package pipeline
