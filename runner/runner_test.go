package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	questdrive "github.com/tessara/questdrive"
	"github.com/tessara/questdrive/binding"
	"github.com/tessara/questdrive/ext"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/queue"
	"github.com/tessara/questdrive/task"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingQuest(id string) *quest.Quest {
	enrolled := time.Now().Add(-time.Minute)
	return &quest.Quest{
		ID: id,
		Config: quest.Config{
			ExpiresAt:  time.Now().Add(time.Hour),
			Messages:   quest.Messages{QuestName: "Quest " + id},
			TaskConfig: &quest.TaskConfig{Tasks: map[quest.TaskKind]quest.Task{quest.TaskWatchVideo: {Target: 60}}},
		},
		Status: &quest.Status{EnrolledAt: &enrolled},
	}
}

// scriptStrategy runs a scripted func per item and records the order.
type scriptStrategy struct {
	mu        sync.Mutex
	processed []string
	script    func(ctx context.Context, it *task.Item) error
}

func (s *scriptStrategy) Kinds() []quest.TaskKind {
	return []quest.TaskKind{quest.TaskWatchVideo}
}

func (s *scriptStrategy) Run(ctx context.Context, it *task.Item) error {
	s.mu.Lock()
	s.processed = append(s.processed, it.Quest.ID)
	s.mu.Unlock()
	if s.script != nil {
		return s.script(ctx, it)
	}
	return nil
}

func (s *scriptStrategy) order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.processed))
	copy(out, s.processed)
	return out
}

// recorder captures lifecycle outcomes.
type recorder struct {
	mu        sync.Mutex
	completed []string
	skipped   []string
	failed    []string
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnQuestCompleted(_ context.Context, it *task.Item, _ time.Duration) error {
	r.mu.Lock()
	r.completed = append(r.completed, it.Quest.ID)
	r.mu.Unlock()
	return nil
}

func (r *recorder) OnQuestSkipped(_ context.Context, it *task.Item, _ error) error {
	r.mu.Lock()
	r.skipped = append(r.skipped, it.Quest.ID)
	r.mu.Unlock()
	return nil
}

func (r *recorder) OnQuestFailed(_ context.Context, it *task.Item, _ error) error {
	r.mu.Lock()
	r.failed = append(r.failed, it.Quest.ID)
	r.mu.Unlock()
	return nil
}

func (r *recorder) snapshot() (completed, skipped, failed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.completed...), append([]string{}, r.skipped...), append([]string{}, r.failed...)
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

func newTestRunner(t *testing.T, s task.Strategy, exts ...ext.Extension) (*Runner, *queue.Queue) {
	t.Helper()
	q := queue.New()
	reg := ext.NewRegistry(discard())
	for _, e := range exts {
		reg.Register(e)
	}
	r := New(q, &binding.Bindings{}, reg, questdrive.DefaultConfig(), discard(),
		WithStrategies(s),
	)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Stop(ctx)
	})
	return r, q
}

func TestRunner_DrainsFIFO(t *testing.T) {
	s := &scriptStrategy{}
	r, q := newTestRunner(t, s)

	q.Push(pendingQuest("a"))
	q.Push(pendingQuest("b"))
	q.Push(pendingQuest("c"))
	r.Wake()

	waitFor(t, "queue drained", func() bool { return len(s.order()) == 3 })
	order := s.order()
	for i, want := range []string{"a", "b", "c"} {
		if order[i] != want {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want)
		}
	}
}

func TestRunner_AdvancesPastSkipAndFailure(t *testing.T) {
	s := &scriptStrategy{
		script: func(_ context.Context, it *task.Item) error {
			switch it.Quest.ID {
			case "skip-me":
				return task.Skipf("not on this host")
			case "fail-me":
				return errors.New("boom")
			}
			return nil
		},
	}
	rec := &recorder{}
	r, q := newTestRunner(t, s, rec)

	q.Push(pendingQuest("skip-me"))
	q.Push(pendingQuest("fail-me"))
	q.Push(pendingQuest("ok"))
	r.Wake()

	waitFor(t, "all items processed", func() bool { return len(s.order()) == 3 })
	waitFor(t, "outcomes recorded", func() bool {
		c, sk, f := rec.snapshot()
		return len(c) == 1 && len(sk) == 1 && len(f) == 1
	})

	completed, skipped, failed := rec.snapshot()
	if completed[0] != "ok" || skipped[0] != "skip-me" || failed[0] != "fail-me" {
		t.Errorf("outcomes: completed=%v skipped=%v failed=%v", completed, skipped, failed)
	}
}

func TestRunner_DropsStaleItems(t *testing.T) {
	s := &scriptStrategy{}
	r, q := newTestRunner(t, s)

	stale := pendingQuest("stale")
	q.Push(stale)
	q.Push(pendingQuest("fresh"))

	// Completed while queued.
	now := time.Now()
	stale.Status.CompletedAt = &now

	r.Wake()
	waitFor(t, "fresh item processed", func() bool { return len(s.order()) == 1 })
	if s.order()[0] != "fresh" {
		t.Errorf("processed %v, want only fresh", s.order())
	}
}

func TestRunner_CancelActiveAdvances(t *testing.T) {
	s := &scriptStrategy{
		script: func(ctx context.Context, it *task.Item) error {
			if it.Quest.ID == "blocker" {
				<-ctx.Done()
				return ctx.Err()
			}
			return nil
		},
	}
	rec := &recorder{}
	r, q := newTestRunner(t, s, rec)

	q.Push(pendingQuest("blocker"))
	q.Push(pendingQuest("next"))
	r.Wake()

	waitFor(t, "blocker active", func() bool {
		id, ok := r.Active()
		return ok && id == "blocker"
	})
	r.CancelActive()

	waitFor(t, "next item processed", func() bool { return len(s.order()) == 2 })
	// A forced stop is neither a completion, a skip, nor a failure.
	completed, skipped, failed := rec.snapshot()
	for _, list := range [][]string{completed, skipped, failed} {
		for _, id := range list {
			if id == "blocker" {
				t.Errorf("cancelled item reported as an outcome: completed=%v skipped=%v failed=%v",
					completed, skipped, failed)
			}
		}
	}
}

func TestRunner_WakeCoalesces(t *testing.T) {
	s := &scriptStrategy{}
	r, q := newTestRunner(t, s)

	q.Push(pendingQuest("a"))
	r.Wake()
	r.Wake()
	r.Wake()

	waitFor(t, "item processed", func() bool { return len(s.order()) >= 1 })
	time.Sleep(20 * time.Millisecond)
	if got := len(s.order()); got != 1 {
		t.Errorf("processed %d times, want exactly 1", got)
	}
}

func TestRunner_DoubleStart(t *testing.T) {
	s := &scriptStrategy{}
	r, _ := newTestRunner(t, s)

	if err := r.Start(context.Background()); !errors.Is(err, questdrive.ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestRunner_StopInterruptsActiveItem(t *testing.T) {
	s := &scriptStrategy{
		script: func(ctx context.Context, _ *task.Item) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	r, q := newTestRunner(t, s)

	q.Push(pendingQuest("a"))
	r.Wake()
	waitFor(t, "item active", func() bool { _, ok := r.Active(); return ok })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, ok := r.Active(); ok {
		t.Error("item still active after Stop")
	}
}
