package queue

import (
	"testing"
	"time"

	"github.com/tessara/questdrive/quest"
)

func pendingQuest(id string, now time.Time) *quest.Quest {
	enrolled := now.Add(-time.Minute)
	return &quest.Quest{
		ID: id,
		Config: quest.Config{
			ExpiresAt:  now.Add(time.Hour),
			TaskConfig: &quest.TaskConfig{Tasks: map[quest.TaskKind]quest.Task{quest.TaskWatchVideo: {Target: 60}}},
		},
		Status: &quest.Status{EnrolledAt: &enrolled},
	}
}

func TestPush_DedupsByID(t *testing.T) {
	now := time.Now()
	q := New()

	if !q.Push(pendingQuest("a", now)) {
		t.Fatal("first push should add")
	}
	if q.Push(pendingQuest("a", now)) {
		t.Fatal("second push of same id must not add")
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1", q.Len())
	}
}

func TestPop_FIFO(t *testing.T) {
	now := time.Now()
	q := New()
	q.Push(pendingQuest("a", now))
	q.Push(pendingQuest("b", now))
	q.Push(pendingQuest("c", now))

	for _, want := range []string{"a", "b", "c"} {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop returned empty, want %q", want)
		}
		if item.ID != want {
			t.Errorf("Pop = %q, want %q", item.ID, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop on empty queue should return false")
	}
}

func TestPop_AllowsRequeue(t *testing.T) {
	now := time.Now()
	q := New()
	q.Push(pendingQuest("a", now))
	q.Pop()

	// Once popped, the same id may be queued again (e.g. next session).
	if !q.Push(pendingQuest("a", now)) {
		t.Fatal("push after pop should add")
	}
}

func TestSync_Idempotent(t *testing.T) {
	now := time.Now()
	snapshot := []*quest.Quest{pendingQuest("a", now), pendingQuest("b", now)}

	q := New()
	if added := q.Sync(snapshot, now); len(added) != 2 {
		t.Fatalf("first Sync added %d, want 2", len(added))
	}
	if added := q.Sync(snapshot, now); len(added) != 0 {
		t.Fatalf("second Sync added %d, want 0", len(added))
	}
	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2", q.Len())
	}
}

func TestSync_FiltersIneligible(t *testing.T) {
	now := time.Now()

	unenrolled := pendingQuest("un", now)
	unenrolled.Status = nil

	completed := pendingQuest("done", now)
	completed.Status.CompletedAt = &now

	expired := pendingQuest("exp", now)
	expired.Config.ExpiresAt = now.Add(-time.Minute)

	q := New()
	added := q.Sync([]*quest.Quest{unenrolled, completed, expired, pendingQuest("ok", now)}, now)
	if len(added) != 1 || added[0].ID != "ok" {
		t.Fatalf("Sync added %v, want just ok", added)
	}
	item, _ := q.Pop()
	if item.ID != "ok" {
		t.Errorf("queued %q, want ok", item.ID)
	}
}

func TestClear(t *testing.T) {
	now := time.Now()
	q := New()
	q.Push(pendingQuest("a", now))
	q.Push(pendingQuest("b", now))

	q.Clear()
	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0", q.Len())
	}
	// Cleared ids can be queued again.
	if !q.Push(pendingQuest("a", now)) {
		t.Error("push after clear should add")
	}
}
