package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tessara/questdrive/event"
)

// awaitProgress blocks until a heartbeat-success push for the item's
// quest reports progress at or above the target, or the context is
// cancelled. Progress is read the config-version-dependent way.
func awaitProgress(ctx context.Context, it *Item) error {
	done := make(chan struct{})
	var once sync.Once

	sub := it.Bindings.Bus.Subscribe(event.TopicHeartbeatSuccess, func(p event.Payload) {
		hb, ok := p.(event.HeartbeatSuccess)
		if !ok || hb.QuestID != it.Quest.ID {
			return
		}
		progress := it.Quest.ProgressFrom(hb.Status, it.Kind)
		it.Logger.Debug("heartbeat progress",
			slog.String("quest", it.Quest.Name()),
			slog.Float64("progress", progress),
			slog.Float64("target", it.Target),
		)
		if progress >= it.Target {
			once.Do(func() { close(done) })
		}
	})
	defer sub.Cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
