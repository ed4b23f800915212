// Package observability provides an OpenTelemetry-based metrics
// extension for the engine. The MetricsExtension implements lifecycle
// hooks to record system-wide counters for enrollments, queueing,
// completions, skips, failures, and session restarts.
//
// For per-execution tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
