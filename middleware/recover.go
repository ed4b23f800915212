package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/tessara/questdrive/task"
)

// Recover returns middleware that recovers from panics in the strategy
// chain. Panics are converted to errors and logged with a stack trace,
// so one faulting strategy never takes down the runner.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, it *task.Item, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("task strategy panicked",
					slog.String("quest", it.Quest.Name()),
					slog.String("quest_id", it.Quest.ID),
					slog.String("task_kind", string(it.Kind)),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic in quest %s: %v", it.Quest.ID, r)
			}
		}()
		return next(ctx)
	}
}
