package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tessara/questdrive/task"
)

// tracerName is the instrumentation scope name for questdrive tracing.
const tracerName = "github.com/tessara/questdrive"

// Tracing returns middleware that wraps item execution in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a
// pass-through with zero overhead.
//
// Span attributes include: questdrive.quest.id, questdrive.quest.name,
// questdrive.task.kind, questdrive.task.target. On error, the span
// status is set to codes.Error with the error message; skips keep Ok
// status with a questdrive.task.skipped marker.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided
// tracer. This variant allows injecting a specific TracerProvider for
// testing or when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, it *task.Item, next Handler) error {
		ctx, span := tracer.Start(ctx, "questdrive.task.execute",
			trace.WithAttributes(
				attribute.String("questdrive.quest.id", it.Quest.ID),
				attribute.String("questdrive.quest.name", it.Quest.Name()),
				attribute.String("questdrive.task.kind", string(it.Kind)),
				attribute.Float64("questdrive.task.target", it.Target),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		switch {
		case task.IsSkip(err):
			span.SetAttributes(attribute.Bool("questdrive.task.skipped", true))
			span.SetStatus(codes.Ok, "")
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		default:
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
