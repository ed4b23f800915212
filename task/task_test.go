package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	questdrive "github.com/tessara/questdrive"
	"github.com/tessara/questdrive/api"
	"github.com/tessara/questdrive/binding"
	"github.com/tessara/questdrive/event"
	"github.com/tessara/questdrive/quest"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI scripts the remote-service responses the strategies consume.
type fakeAPI struct {
	api.Client

	mu sync.Mutex

	// VideoProgress: every pushed timestamp, and the threshold at or
	// above which the response carries the completion marker.
	videoPushes   []float64
	completeAtTS  float64
	completeVideo bool

	// PublicApplication.
	app    api.Application
	appErr error

	// Heartbeat: successive progress values per call (last one repeats),
	// and the terminal flag of every call.
	hbProgress []float64
	hbKind     quest.TaskKind
	hbCalls    int
	hbTerminal []bool
}

func (f *fakeAPI) VideoProgress(_ context.Context, _ string, timestamp float64) (api.VideoProgressResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videoPushes = append(f.videoPushes, timestamp)
	if f.completeVideo && timestamp >= f.completeAtTS {
		done := "now"
		return api.VideoProgressResponse{CompletedAt: &done}, nil
	}
	return api.VideoProgressResponse{}, nil
}

func (f *fakeAPI) PublicApplication(_ context.Context, _ string) (api.Application, error) {
	return f.app, f.appErr
}

func (f *fakeAPI) Heartbeat(_ context.Context, _, _ string, terminal bool) (api.HeartbeatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hbTerminal = append(f.hbTerminal, terminal)
	i := f.hbCalls
	if i >= len(f.hbProgress) {
		i = len(f.hbProgress) - 1
	}
	f.hbCalls++
	var value float64
	if i >= 0 {
		value = f.hbProgress[i]
	}
	return api.HeartbeatResponse{
		Progress: map[quest.TaskKind]quest.Progress{f.hbKind: {Value: value}},
	}, nil
}

func (f *fakeAPI) pushes() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]float64, len(f.videoPushes))
	copy(out, f.videoPushes)
	return out
}

func (f *fakeAPI) terminals() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.hbTerminal))
	copy(out, f.hbTerminal)
	return out
}

// enrolledQuest builds a quest enrolled `ago` in the past with one task
// of the given kind and target.
func enrolledQuest(id string, kind quest.TaskKind, target float64, ago time.Duration) *quest.Quest {
	enrolled := time.Now().Add(-ago)
	return &quest.Quest{
		ID: id,
		Config: quest.Config{
			ExpiresAt:   time.Now().Add(time.Hour),
			Application: quest.Application{ID: "app-1", Name: "Example Game"},
			Messages:    quest.Messages{QuestName: "Quest " + id},
			TaskConfig:  &quest.TaskConfig{Tasks: map[quest.TaskKind]quest.Task{kind: {Target: target}}},
		},
		Status: &quest.Status{EnrolledAt: &enrolled},
	}
}

// fastConfig shrinks every timing knob so loops complete in test time.
func fastConfig() questdrive.Config {
	cfg := questdrive.DefaultConfig()
	cfg.VideoTick = time.Millisecond
	cfg.ActivityBeatInterval = time.Millisecond
	return cfg
}

func testItem(q *quest.Quest, client *fakeAPI, bus event.Bus) *Item {
	kind, target, _ := q.FirstSupportedTask()
	return &Item{
		Quest:  q,
		Kind:   kind,
		Target: target,
		Bindings: &binding.Bindings{
			API:     client,
			Bus:     bus,
			Desktop: true,
		},
		Config: fastConfig(),
		Logger: discard(),
	}
}
