// Package instrumentation provides OpenTelemetry-based metrics for the
// email-ai-agent pipeline, exported in Prometheus format.
//
// The provider wires an OTel meter provider to the Prometheus exporter; the
// resulting metrics are served by the dedicated metrics listener in the
// server package via promhttp. When instrumentation is disabled the
// provider hands out a no-op recorder, so call sites never branch.
package instrumentation
