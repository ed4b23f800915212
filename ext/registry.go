package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/tessara/questdrive/id"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/task"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type questEnrolledEntry struct {
	name string
	hook QuestEnrolled
}

type questQueuedEntry struct {
	name string
	hook QuestQueued
}

type questStartedEntry struct {
	name string
	hook QuestStarted
}

type questCompletedEntry struct {
	name string
	hook QuestCompleted
}

type questSkippedEntry struct {
	name string
	hook QuestSkipped
}

type questFailedEntry struct {
	name string
	hook QuestFailed
}

type sessionStartedEntry struct {
	name string
	hook SessionStarted
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	questEnrolled  []questEnrolledEntry
	questQueued    []questQueuedEntry
	questStarted   []questStartedEntry
	questCompleted []questCompletedEntry
	questSkipped   []questSkippedEntry
	questFailed    []questFailedEntry
	sessionStarted []sessionStartedEntry
	shutdown       []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(QuestEnrolled); ok {
		r.questEnrolled = append(r.questEnrolled, questEnrolledEntry{name, h})
	}
	if h, ok := e.(QuestQueued); ok {
		r.questQueued = append(r.questQueued, questQueuedEntry{name, h})
	}
	if h, ok := e.(QuestStarted); ok {
		r.questStarted = append(r.questStarted, questStartedEntry{name, h})
	}
	if h, ok := e.(QuestCompleted); ok {
		r.questCompleted = append(r.questCompleted, questCompletedEntry{name, h})
	}
	if h, ok := e.(QuestSkipped); ok {
		r.questSkipped = append(r.questSkipped, questSkippedEntry{name, h})
	}
	if h, ok := e.(QuestFailed); ok {
		r.questFailed = append(r.questFailed, questFailedEntry{name, h})
	}
	if h, ok := e.(SessionStarted); ok {
		r.sessionStarted = append(r.sessionStarted, sessionStartedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitQuestEnrolled notifies all extensions that implement QuestEnrolled.
func (r *Registry) EmitQuestEnrolled(ctx context.Context, q *quest.Quest) {
	for _, e := range r.questEnrolled {
		if err := e.hook.OnQuestEnrolled(ctx, q); err != nil {
			r.logHookError("OnQuestEnrolled", e.name, err)
		}
	}
}

// EmitQuestQueued notifies all extensions that implement QuestQueued.
func (r *Registry) EmitQuestQueued(ctx context.Context, q *quest.Quest) {
	for _, e := range r.questQueued {
		if err := e.hook.OnQuestQueued(ctx, q); err != nil {
			r.logHookError("OnQuestQueued", e.name, err)
		}
	}
}

// EmitQuestStarted notifies all extensions that implement QuestStarted.
func (r *Registry) EmitQuestStarted(ctx context.Context, it *task.Item) {
	for _, e := range r.questStarted {
		if err := e.hook.OnQuestStarted(ctx, it); err != nil {
			r.logHookError("OnQuestStarted", e.name, err)
		}
	}
}

// EmitQuestCompleted notifies all extensions that implement QuestCompleted.
func (r *Registry) EmitQuestCompleted(ctx context.Context, it *task.Item, elapsed time.Duration) {
	for _, e := range r.questCompleted {
		if err := e.hook.OnQuestCompleted(ctx, it, elapsed); err != nil {
			r.logHookError("OnQuestCompleted", e.name, err)
		}
	}
}

// EmitQuestSkipped notifies all extensions that implement QuestSkipped.
func (r *Registry) EmitQuestSkipped(ctx context.Context, it *task.Item, reason error) {
	for _, e := range r.questSkipped {
		if err := e.hook.OnQuestSkipped(ctx, it, reason); err != nil {
			r.logHookError("OnQuestSkipped", e.name, err)
		}
	}
}

// EmitQuestFailed notifies all extensions that implement QuestFailed.
func (r *Registry) EmitQuestFailed(ctx context.Context, it *task.Item, itemErr error) {
	for _, e := range r.questFailed {
		if err := e.hook.OnQuestFailed(ctx, it, itemErr); err != nil {
			r.logHookError("OnQuestFailed", e.name, err)
		}
	}
}

// EmitSessionStarted notifies all extensions that implement SessionStarted.
func (r *Registry) EmitSessionStarted(ctx context.Context, sessionID id.SessionID) {
	for _, e := range r.sessionStarted {
		if err := e.hook.OnSessionStarted(ctx, sessionID); err != nil {
			r.logHookError("OnSessionStarted", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the engine.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
