package ext

import (
	"context"
	"time"

	"github.com/tessara/questdrive/id"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/task"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Quest lifecycle hooks
// ──────────────────────────────────────────────────

// QuestEnrolled is called after a quest is successfully auto-accepted.
type QuestEnrolled interface {
	OnQuestEnrolled(ctx context.Context, q *quest.Quest) error
}

// QuestQueued is called after a pending quest enters the queue.
type QuestQueued interface {
	OnQuestQueued(ctx context.Context, q *quest.Quest) error
}

// QuestStarted is called when the runner begins driving a quest.
type QuestStarted interface {
	OnQuestStarted(ctx context.Context, it *task.Item) error
}

// QuestCompleted is called after a quest's task reaches its target.
type QuestCompleted interface {
	OnQuestCompleted(ctx context.Context, it *task.Item, elapsed time.Duration) error
}

// QuestSkipped is called when a quest cannot be driven on this host.
type QuestSkipped interface {
	OnQuestSkipped(ctx context.Context, it *task.Item, reason error) error
}

// QuestFailed is called when a quest's strategy fails.
type QuestFailed interface {
	OnQuestFailed(ctx context.Context, it *task.Item, err error) error
}

// ──────────────────────────────────────────────────
// Session hooks
// ──────────────────────────────────────────────────

// SessionStarted is called when a processing session (re)starts.
type SessionStarted interface {
	OnSessionStarted(ctx context.Context, sessionID id.SessionID) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
