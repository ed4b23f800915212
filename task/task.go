// Package task implements the per-kind completion strategies. Each
// strategy drives one quest's progress to its target, either by a
// polling self-loop or by waiting on server-pushed progress events.
//
// Strategies run under the item's cancellation token and must leave no
// synthetic state behind on any exit path — completion, skip, failure,
// or forced stop.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	questdrive "github.com/tessara/questdrive"
	"github.com/tessara/questdrive/binding"
	"github.com/tessara/questdrive/quest"
)

// Item is one quest being driven: the quest, the resolved task kind and
// target, and everything the strategy needs to act.
type Item struct {
	Quest    *quest.Quest
	Kind     quest.TaskKind
	Target   float64
	Bindings *binding.Bindings
	Config   questdrive.Config
	Logger   *slog.Logger
}

// Strategy drives one family of task kinds to completion.
type Strategy interface {
	// Kinds lists the task kinds this strategy serves.
	Kinds() []quest.TaskKind

	// Run drives the item until its progress reaches the target. It
	// returns nil on completion, a *SkipError when the item cannot be
	// driven here (unsupported platform, missing prerequisite), or any
	// other error on failure. All three outcomes advance the queue.
	Run(ctx context.Context, it *Item) error
}

// SkipError marks an item as undrivable on this host — an immediate,
// non-retryable skip, not a failure.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return "task: skipped: " + e.Reason }

// Skipf builds a SkipError.
func Skipf(format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// IsSkip reports whether err is (or wraps) a skip outcome.
func IsSkip(err error) bool {
	var se *SkipError
	return errors.As(err, &se)
}

// sleepCtx waits d, returning false if ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
