// Package middleware provides composable middleware for task execution.
//
// A [Middleware] is a function that wraps a task strategy invocation.
// Middleware are composed into a chain using [Chain] and applied around
// each item the runner executes. They are applied right-to-left: the
// first middleware in the slice is the outermost wrapper.
//
//	// logging → recover → strategy
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging] — logs quest name, task kind, duration, and outcome
//   - [Recover] — catches strategy panics and converts them to errors
//   - [Tracing] — wraps execution in an OpenTelemetry span
//   - [Metrics] — records per-item duration and outcome counters
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting.
package middleware
