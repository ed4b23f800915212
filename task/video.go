package task

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/tessara/questdrive/quest"
)

// Video drives the self-reporting video kinds by pushing accelerated
// playhead positions. The push cadence stays plausible: each reported
// position never exceeds elapsed wall time since enrollment plus a small
// slack, never exceeds the target, and never decreases.
type Video struct{}

// NewVideo creates the video strategy.
func NewVideo() *Video { return &Video{} }

// Kinds implements Strategy.
func (*Video) Kinds() []quest.TaskKind {
	return []quest.TaskKind{quest.TaskWatchVideo, quest.TaskWatchVideoOnMobile}
}

// Run implements Strategy. It resumes from the quest's current progress,
// advances the playhead by the speedup factor per tick while the
// plausibility bound allows, and finishes with a terminal push at the
// exact target if no earlier push carried the completion marker.
func (*Video) Run(ctx context.Context, it *Item) error {
	st := it.Quest.Status
	if st == nil || st.EnrolledAt == nil {
		return Skipf("quest %s is not enrolled", it.Quest.ID)
	}
	enrolledAt := *st.EnrolledAt

	speed := float64(it.Config.VideoSpeed)
	slack := float64(it.Config.VideoSlack)
	target := it.Target
	done := it.Quest.ProgressValue(it.Kind)
	completed := false

	for {
		allowed := math.Floor(time.Since(enrolledAt).Seconds()) + slack
		next := done + speed

		if allowed-done >= speed {
			// Jitter the reported position; the cap keeps it at or
			// below the target even on the last push.
			push := math.Min(target, next+rand.Float64())
			resp, err := it.Bindings.API.VideoProgress(ctx, it.Quest.ID, push)
			if err != nil {
				return err
			}
			completed = resp.Completed()
			done = math.Min(target, next)
			it.Logger.Debug("video progress pushed",
				slog.String("quest", it.Quest.Name()),
				slog.Float64("position", push),
				slog.Float64("target", target),
			)
		}

		if next >= target {
			break
		}
		if !sleepCtx(ctx, it.Config.VideoTick) {
			return ctx.Err()
		}
	}

	if !completed {
		if _, err := it.Bindings.API.VideoProgress(ctx, it.Quest.ID, target); err != nil {
			return err
		}
	}

	it.Logger.Info("video task completed", slog.String("quest", it.Quest.Name()))
	return nil
}
