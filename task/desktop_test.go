package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tessara/questdrive/api"
	"github.com/tessara/questdrive/event"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/registry"
)

func gameApp() api.Application {
	return api.Application{
		ID:   "app-1",
		Name: "Example Game",
		Executables: []api.Executable{
			{OS: "darwin", Name: "game.app"},
			{OS: "win32", Name: ">game.exe"},
		},
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPlayDesktop_FakesProcessUntilTargetReached(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskPlayOnDesktop, 300, time.Hour)
	client := &fakeAPI{app: gameApp()}
	bus := event.NewDispatcher(discard())
	it := testItem(q, client, bus)
	it.Bindings.Process = registry.NewProcessOverride(nil)

	var changes []event.ProcessChange
	bus.Subscribe(event.TopicProcessChange, func(p event.Payload) {
		changes = append(changes, p.(event.ProcessChange))
	})

	result := make(chan error, 1)
	go func() { result <- NewPlayDesktop().Run(context.Background(), it) }()

	waitFor(t, "synthetic process", func() bool {
		_, active := it.Bindings.Process.Active()
		return active
	})
	proc, _ := it.Bindings.Process.Active()
	if proc.ExeName != "game.exe" {
		t.Errorf("ExeName = %q, want the stripped win32 name", proc.ExeName)
	}
	if proc.PID < 1000 || proc.PID >= 31000 {
		t.Errorf("PID = %d, want within [1000, 31000)", proc.PID)
	}
	if want := `C:\Program Files\Example Game\game.exe`; proc.CmdLine != want {
		t.Errorf("CmdLine = %q, want %q", proc.CmdLine, want)
	}
	if want := "c:/program files/example game/game.exe"; proc.ExePath != want {
		t.Errorf("ExePath = %q, want %q", proc.ExePath, want)
	}
	if proc.Hidden {
		t.Error("synthetic process must not be hidden")
	}
	if proc.IsLauncher {
		t.Error("synthetic process must not be a launcher")
	}

	waitFor(t, "heartbeat subscription", func() bool {
		return bus.SubscriberCount(event.TopicHeartbeatSuccess) == 1
	})

	// Below-target progress must not finish the item.
	bus.Publish(event.TopicHeartbeatSuccess, event.HeartbeatSuccess{
		QuestID: "q1",
		Status:  quest.Status{Progress: map[quest.TaskKind]quest.Progress{quest.TaskPlayOnDesktop: {Value: 120}}},
	})
	select {
	case err := <-result:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	bus.Publish(event.TopicHeartbeatSuccess, event.HeartbeatSuccess{
		QuestID: "q1",
		Status:  quest.Status{Progress: map[quest.TaskKind]quest.Progress{quest.TaskPlayOnDesktop: {Value: 300}}},
	})
	if err := <-result; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, active := it.Bindings.Process.Active(); active {
		t.Error("synthetic process must be removed on completion")
	}
	if len(changes) != 2 || len(changes[0].Added) != 1 || len(changes[1].Removed) != 1 {
		t.Errorf("process change events = %+v, want one add then one remove", changes)
	}
}

func TestPlayDesktop_IgnoresOtherQuestsHeartbeats(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskPlayOnDesktop, 300, time.Hour)
	client := &fakeAPI{app: gameApp()}
	bus := event.NewDispatcher(discard())
	it := testItem(q, client, bus)
	it.Bindings.Process = registry.NewProcessOverride(nil)

	result := make(chan error, 1)
	go func() { result <- NewPlayDesktop().Run(context.Background(), it) }()

	waitFor(t, "heartbeat subscription", func() bool {
		return bus.SubscriberCount(event.TopicHeartbeatSuccess) == 1
	})
	bus.Publish(event.TopicHeartbeatSuccess, event.HeartbeatSuccess{
		QuestID: "other",
		Status:  quest.Status{Progress: map[quest.TaskKind]quest.Progress{quest.TaskPlayOnDesktop: {Value: 999}}},
	})
	select {
	case err := <-result:
		t.Fatalf("Run finished on another quest's progress: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	bus.Publish(event.TopicHeartbeatSuccess, event.HeartbeatSuccess{
		QuestID: "q1",
		Status:  quest.Status{Progress: map[quest.TaskKind]quest.Progress{quest.TaskPlayOnDesktop: {Value: 300}}},
	})
	if err := <-result; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestPlayDesktop_SkipsOffDesktop(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskPlayOnDesktop, 300, time.Hour)
	it := testItem(q, &fakeAPI{app: gameApp()}, event.NewDispatcher(discard()))
	it.Bindings.Desktop = false

	if err := NewPlayDesktop().Run(context.Background(), it); !IsSkip(err) {
		t.Fatalf("Run = %v, want skip", err)
	}
}

func TestPlayDesktop_SkipsWithoutProcessRegistry(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskPlayOnDesktop, 300, time.Hour)
	it := testItem(q, &fakeAPI{app: gameApp()}, event.NewDispatcher(discard()))

	if err := NewPlayDesktop().Run(context.Background(), it); !IsSkip(err) {
		t.Fatalf("Run = %v, want skip", err)
	}
}

func TestPlayDesktop_SkipsWithoutWindowsExecutable(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskPlayOnDesktop, 300, time.Hour)
	app := gameApp()
	app.Executables = app.Executables[:1] // darwin only
	it := testItem(q, &fakeAPI{app: app}, event.NewDispatcher(discard()))
	it.Bindings.Process = registry.NewProcessOverride(nil)

	if err := NewPlayDesktop().Run(context.Background(), it); !IsSkip(err) {
		t.Fatalf("Run = %v, want skip", err)
	}
}

func TestPlayDesktop_ApplicationLookupFailureIsError(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskPlayOnDesktop, 300, time.Hour)
	lookupErr := errors.New("boom")
	it := testItem(q, &fakeAPI{appErr: lookupErr}, event.NewDispatcher(discard()))
	it.Bindings.Process = registry.NewProcessOverride(nil)

	err := NewPlayDesktop().Run(context.Background(), it)
	if !errors.Is(err, lookupErr) {
		t.Fatalf("Run = %v, want wrapped lookup error", err)
	}
	if IsSkip(err) {
		t.Error("lookup failure must be a failure, not a skip")
	}
}

func TestPlayDesktop_ClearsOverrideOnCancel(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskPlayOnDesktop, 300, time.Hour)
	bus := event.NewDispatcher(discard())
	it := testItem(q, &fakeAPI{app: gameApp()}, bus)
	it.Bindings.Process = registry.NewProcessOverride(nil)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- NewPlayDesktop().Run(ctx, it) }()

	waitFor(t, "synthetic process", func() bool {
		_, active := it.Bindings.Process.Active()
		return active
	})
	cancel()

	if err := <-result; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if _, active := it.Bindings.Process.Active(); active {
		t.Error("synthetic process must be removed on forced stop")
	}
	if bus.SubscriberCount(event.TopicHeartbeatSuccess) != 0 {
		t.Error("heartbeat subscription must be released on forced stop")
	}
}

func TestStreamDesktop_FakesStreamUntilTargetReached(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskStreamOnDesktop, 300, time.Hour)
	q.Config.ConfigVersion = 1
	bus := event.NewDispatcher(discard())
	it := testItem(q, &fakeAPI{}, bus)
	it.Bindings.Stream = registry.NewStreamOverride(nil)

	result := make(chan error, 1)
	go func() { result <- NewStreamDesktop().Run(context.Background(), it) }()

	waitFor(t, "synthetic stream", func() bool {
		_, active := it.Bindings.Stream.Active()
		return active
	})
	meta, _ := it.Bindings.Stream.Active()
	if meta.ID != "app-1" {
		t.Errorf("stream ID = %q, want the quest's application id", meta.ID)
	}

	waitFor(t, "heartbeat subscription", func() bool {
		return bus.SubscriberCount(event.TopicHeartbeatSuccess) == 1
	})

	// Config version 1 reports the flat stream counter.
	bus.Publish(event.TopicHeartbeatSuccess, event.HeartbeatSuccess{
		QuestID: "q1",
		Status:  quest.Status{StreamProgressSeconds: 300},
	})
	if err := <-result; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, active := it.Bindings.Stream.Active(); active {
		t.Error("synthetic stream must be removed on completion")
	}
}

func TestStreamDesktop_SkipsWithoutStreamRegistry(t *testing.T) {
	q := enrolledQuest("q1", quest.TaskStreamOnDesktop, 300, time.Hour)
	it := testItem(q, &fakeAPI{}, event.NewDispatcher(discard()))

	if err := NewStreamDesktop().Run(context.Background(), it); !IsSkip(err) {
		t.Fatalf("Run = %v, want skip", err)
	}
}
