package quest

import "time"

// The eligibility predicates are pure and shared by the enrollment and
// queueing passes — a single source of truth so the two cannot diverge.

// IsCompletable reports whether a quest can still be driven: not past
// its expiry and carrying at least one supported task kind. Expiry wins
// regardless of any other field.
func IsCompletable(q *Quest, now time.Time) bool {
	if !now.Before(q.Config.ExpiresAt) {
		return false
	}
	tasks := q.Config.Tasks()
	if tasks == nil {
		return false
	}
	for _, k := range SupportedTasks {
		if _, ok := tasks[k]; ok {
			return true
		}
	}
	return false
}

// IsEnrolled reports whether the user has enrolled in the quest.
func IsEnrolled(q *Quest) bool {
	return q.Status != nil && q.Status.EnrolledAt != nil
}

// IsCompleted reports whether the user has completed the quest.
func IsCompleted(q *Quest) bool {
	return q.Status != nil && q.Status.CompletedAt != nil
}

// Pending reports whether a quest belongs in the processing queue:
// enrolled, not completed, and still completable.
func Pending(q *Quest, now time.Time) bool {
	return IsEnrolled(q) && !IsCompleted(q) && IsCompletable(q, now)
}

// Enrollable reports whether a quest is a candidate for auto-accept:
// completable but neither enrolled nor completed.
func Enrollable(q *Quest, now time.Time) bool {
	return !IsEnrolled(q) && !IsCompleted(q) && IsCompletable(q, now)
}
