package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tessara/questdrive/binding"
	"github.com/tessara/questdrive/quest"
)

// Activity drives the play-activity kind with a direct heartbeat loop
// against the remote, under a synthesized voice-call stream key. No host
// state is overridden; the strategy only needs a channel id to build the
// key.
type Activity struct{}

// NewActivity creates the activity strategy.
func NewActivity() *Activity { return &Activity{} }

// Kinds implements Strategy.
func (*Activity) Kinds() []quest.TaskKind {
	return []quest.TaskKind{quest.TaskPlayActivity}
}

// Run implements Strategy. It heartbeats on a fixed interval, reading
// the target kind's progress from each response, and closes out with a
// terminal heartbeat once the target is reached.
func (*Activity) Run(ctx context.Context, it *Item) error {
	channelID, ok := resolveChannel(it.Bindings)
	if !ok {
		return Skipf("no voice channel available for quest %s", it.Quest.ID)
	}
	streamKey := fmt.Sprintf("call:%s:1", channelID)

	it.Logger.Info("spoofing activity",
		slog.String("quest", it.Quest.Name()),
		slog.String("stream_key", streamKey),
	)

	for {
		resp, err := it.Bindings.API.Heartbeat(ctx, it.Quest.ID, streamKey, false)
		if err != nil {
			return err
		}
		progress := resp.Value(it.Kind)
		it.Logger.Debug("activity heartbeat",
			slog.String("quest", it.Quest.Name()),
			slog.Float64("progress", progress),
			slog.Float64("target", it.Target),
		)

		if progress >= it.Target {
			if _, err := it.Bindings.API.Heartbeat(ctx, it.Quest.ID, streamKey, true); err != nil {
				return err
			}
			it.Logger.Info("activity task completed", slog.String("quest", it.Quest.Name()))
			return nil
		}

		if !sleepCtx(ctx, it.Config.ActivityBeatInterval) {
			return ctx.Err()
		}
	}
}

// resolveChannel picks the channel to anchor the synthetic call: the
// first private channel if the user has any, otherwise the first voice
// channel of any guild.
func resolveChannel(b *binding.Bindings) (string, bool) {
	if b.Chans != nil {
		if private := b.Chans.SortedPrivateChannels(); len(private) > 0 {
			return private[0].ID, true
		}
	}
	if b.Guilds != nil {
		for _, g := range b.Guilds.GuildChannels() {
			if len(g.Voice) > 0 {
				return g.Voice[0].ID, true
			}
		}
	}
	return "", false
}
