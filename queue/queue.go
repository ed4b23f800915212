// Package queue provides the in-memory ordered collection of enrolled,
// incomplete quests pending processing. Membership is unique by quest id
// and drained one item at a time, FIFO.
package queue

import (
	"sync"
	"time"

	"github.com/tessara/questdrive/quest"
)

// Queue is safe for concurrent use. Items may become stale after
// insertion (expire, complete); consumers re-check at pop time.
type Queue struct {
	mu      sync.Mutex
	items   []*quest.Quest
	present map[string]bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{present: make(map[string]bool)}
}

// Push appends a quest unless one with the same id is already queued.
// Returns whether the quest was added.
func (q *Queue) Push(item *quest.Quest) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.present[item.ID] {
		return false
	}
	q.items = append(q.items, item)
	q.present[item.ID] = true
	return true
}

// Sync reconciles a registry snapshot into the queue: every pending
// quest (enrolled, incomplete, completable) not already present is
// appended. Idempotent — syncing the same snapshot twice adds nothing
// the second time. Returns the quests that were added.
func (q *Queue) Sync(snapshot []*quest.Quest, now time.Time) []*quest.Quest {
	var added []*quest.Quest
	for _, item := range snapshot {
		if !quest.Pending(item, now) {
			continue
		}
		if q.Push(item) {
			added = append(added, item)
		}
	}
	return added
}

// Pop removes and returns the oldest quest, or false when empty.
func (q *Queue) Pop() (*quest.Quest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	delete(q.present, item.ID)
	return item, true
}

// Len returns the number of queued quests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops every queued quest.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.present = make(map[string]bool)
}
