package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/tessara/questdrive/task"
)

// Logging returns middleware that logs item start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, it *task.Item, next Handler) error {
		logger.Info("task started",
			slog.String("quest", it.Quest.Name()),
			slog.String("quest_id", it.Quest.ID),
			slog.String("task_kind", string(it.Kind)),
			slog.Float64("target", it.Target),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		switch {
		case task.IsSkip(err):
			logger.Info("task skipped",
				slog.String("quest", it.Quest.Name()),
				slog.String("task_kind", string(it.Kind)),
				slog.String("reason", err.Error()),
			)
		case err != nil:
			logger.Error("task failed",
				slog.String("quest", it.Quest.Name()),
				slog.String("task_kind", string(it.Kind)),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		default:
			logger.Info("task completed",
				slog.String("quest", it.Quest.Name()),
				slog.String("task_kind", string(it.Kind)),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
