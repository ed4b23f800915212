package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tessara/questdrive/ext"
	"github.com/tessara/questdrive/id"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/task"
)

// meterName is the instrumentation scope name for lifecycle metrics.
const meterName = "github.com/tessara/questdrive/observability"

// Compile-time interface checks.
var (
	_ ext.Extension      = (*MetricsExtension)(nil)
	_ ext.QuestEnrolled  = (*MetricsExtension)(nil)
	_ ext.QuestQueued    = (*MetricsExtension)(nil)
	_ ext.QuestCompleted = (*MetricsExtension)(nil)
	_ ext.QuestSkipped   = (*MetricsExtension)(nil)
	_ ext.QuestFailed    = (*MetricsExtension)(nil)
	_ ext.SessionStarted = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle counters. Register it
// as an engine extension to automatically track enrollment rates,
// queueing, completion counts, skip and failure rates, and session
// restarts.
type MetricsExtension struct {
	enrolled  metric.Int64Counter
	queued    metric.Int64Counter
	completed metric.Int64Counter
	skipped   metric.Int64Counter
	failed    metric.Int64Counter
	sessions  metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. With no provider configured the instruments are noop.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a specific
// MeterProvider for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}
	// On instrument-creation error the OTel API returns noop
	// instruments, so the extension degrades gracefully.
	m.enrolled, _ = meter.Int64Counter("questdrive.quest.enrolled",
		metric.WithDescription("Total quests auto-accepted"),
		metric.WithUnit("{quest}"))
	m.queued, _ = meter.Int64Counter("questdrive.quest.queued",
		metric.WithDescription("Total quests admitted to the queue"),
		metric.WithUnit("{quest}"))
	m.completed, _ = meter.Int64Counter("questdrive.quest.completed",
		metric.WithDescription("Total quests driven to their target"),
		metric.WithUnit("{quest}"))
	m.skipped, _ = meter.Int64Counter("questdrive.quest.skipped",
		metric.WithDescription("Total quests skipped as undrivable"),
		metric.WithUnit("{quest}"))
	m.failed, _ = meter.Int64Counter("questdrive.quest.failed",
		metric.WithDescription("Total quests whose strategy failed"),
		metric.WithUnit("{quest}"))
	m.sessions, _ = meter.Int64Counter("questdrive.session.started",
		metric.WithDescription("Total processing session (re)starts"),
		metric.WithUnit("{session}"))
	return m
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnQuestEnrolled implements ext.QuestEnrolled.
func (m *MetricsExtension) OnQuestEnrolled(ctx context.Context, _ *quest.Quest) error {
	m.enrolled.Add(ctx, 1)
	return nil
}

// OnQuestQueued implements ext.QuestQueued.
func (m *MetricsExtension) OnQuestQueued(ctx context.Context, _ *quest.Quest) error {
	m.queued.Add(ctx, 1)
	return nil
}

// OnQuestCompleted implements ext.QuestCompleted.
func (m *MetricsExtension) OnQuestCompleted(ctx context.Context, it *task.Item, _ time.Duration) error {
	m.completed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_kind", string(it.Kind)),
	))
	return nil
}

// OnQuestSkipped implements ext.QuestSkipped.
func (m *MetricsExtension) OnQuestSkipped(ctx context.Context, it *task.Item, _ error) error {
	m.skipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_kind", string(it.Kind)),
	))
	return nil
}

// OnQuestFailed implements ext.QuestFailed.
func (m *MetricsExtension) OnQuestFailed(ctx context.Context, it *task.Item, _ error) error {
	m.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_kind", string(it.Kind)),
	))
	return nil
}

// OnSessionStarted implements ext.SessionStarted.
func (m *MetricsExtension) OnSessionStarted(ctx context.Context, _ id.SessionID) error {
	m.sessions.Add(ctx, 1)
	return nil
}
