package task

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/registry"
)

// StreamDesktop drives the stream-on-desktop kind by presenting a
// synthetic active-stream descriptor and waiting for server-pushed
// progress. The user must actually be streaming with at least one other
// participant in the call for the remote to count progress; the
// descriptor only attributes the stream to the quest's application.
type StreamDesktop struct{}

// NewStreamDesktop creates the stream-on-desktop strategy.
func NewStreamDesktop() *StreamDesktop { return &StreamDesktop{} }

// Kinds implements Strategy.
func (*StreamDesktop) Kinds() []quest.TaskKind {
	return []quest.TaskKind{quest.TaskStreamOnDesktop}
}

// Run implements Strategy.
func (*StreamDesktop) Run(ctx context.Context, it *Item) error {
	if !it.Bindings.Desktop {
		return Skipf("quest %s requires the desktop client", it.Quest.ID)
	}
	if it.Bindings.Stream == nil {
		return Skipf("no stream registry on this host")
	}

	it.Bindings.Stream.Set(registry.StreamMetadata{
		ID:  it.Quest.Config.Application.ID,
		PID: 1000 + rand.IntN(30000),
	})
	defer it.Bindings.Stream.Clear()

	it.Logger.Info("faking stream source",
		slog.String("quest", it.Quest.Name()),
		slog.String("application", it.Quest.Config.Application.Name),
	)

	if err := awaitProgress(ctx, it); err != nil {
		return err
	}

	it.Logger.Info("stream task completed", slog.String("quest", it.Quest.Name()))
	return nil
}
