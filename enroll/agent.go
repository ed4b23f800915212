// Package enroll implements the enrollment agent: an idempotent enroll
// call with bounded retry under rate limiting, and the auto-accept batch
// driver that serializes enrollments against the shared rate limit.
package enroll

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/tessara/questdrive/api"
	"github.com/tessara/questdrive/backoff"
	"github.com/tessara/questdrive/quest"
)

// Agent enrolls quests. It is always called from loops that must keep
// progressing through their candidate list, so no call ever panics or
// returns a transport error — outcomes are reported as a bool and logged.
type Agent struct {
	client      api.Client
	logger      *slog.Logger
	maxAttempts int
	retryPad    time.Duration
	pace        *rate.Limiter
	autoAccept  func() bool
	onEnrolled  func(q *quest.Quest)
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxAttempts bounds rate-limited retries per quest. Default 3.
func WithMaxAttempts(n int) Option {
	return func(a *Agent) { a.maxAttempts = n }
}

// WithRetryPad sets the pad added to server-suggested waits. Default
// backoff.RetryAfterPad.
func WithRetryPad(d time.Duration) Option {
	return func(a *Agent) { a.retryPad = d }
}

// WithPause sets the mandatory inter-item pause of the auto-accept
// batch. Default 3s.
func WithPause(d time.Duration) Option {
	return func(a *Agent) { a.pace = rate.NewLimiter(rate.Every(d), 1) }
}

// WithAutoAccept sets the gate for the batch driver. The func is
// consulted on every batch so the setting can change at runtime.
func WithAutoAccept(enabled func() bool) Option {
	return func(a *Agent) { a.autoAccept = enabled }
}

// WithEnrolledHook sets a callback invoked after every successful
// enrollment in an auto-accept batch.
func WithEnrolledHook(fn func(q *quest.Quest)) Option {
	return func(a *Agent) { a.onEnrolled = fn }
}

// New creates an enrollment agent.
func New(client api.Client, logger *slog.Logger, opts ...Option) *Agent {
	a := &Agent{
		client:      client,
		logger:      logger,
		maxAttempts: 3,
		retryPad:    backoff.RetryAfterPad,
		pace:        rate.NewLimiter(rate.Every(3*time.Second), 1),
		autoAccept:  func() bool { return false },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enroll sends one idempotent enroll command for the quest. On a
// rate-limit response it waits the server-suggested time plus the pad
// and retries, up to the attempt ceiling. Any other failure gives up
// immediately. Returns whether the quest ended up enrolled.
func (a *Agent) Enroll(ctx context.Context, q *quest.Quest) bool {
	name := q.Name()

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		err := a.client.Enroll(ctx, q.ID, api.DefaultEnrollRequest())
		if err == nil {
			a.logger.Info("quest enrolled", slog.String("quest", name), slog.String("quest_id", q.ID))
			return true
		}

		if suggested, limited := api.IsRateLimited(err); limited {
			wait := suggested + a.retryPad
			a.logger.Info("enroll rate limited",
				slog.String("quest", name),
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", a.maxAttempts),
				slog.Duration("wait", wait),
			)
			if attempt < a.maxAttempts && !sleepCtx(ctx, wait) {
				return false
			}
			continue
		}

		a.logger.Warn("enroll failed",
			slog.String("quest", name),
			slog.String("quest_id", q.ID),
			slog.String("error", err.Error()),
		)
		return false
	}

	a.logger.Warn("enroll abandoned after rate-limited attempts",
		slog.String("quest", name),
		slog.Int("attempts", a.maxAttempts),
	)
	return false
}

// AutoAccept enrolls every eligible unenrolled quest in the registry,
// strictly sequentially with the mandatory inter-item pause — all calls
// share one server-side rate limit, so throughput is traded for safety.
// Returns whether any enrollment succeeded.
func (a *Agent) AutoAccept(ctx context.Context, reg quest.Registry) bool {
	if !a.autoAccept() {
		return false
	}

	now := time.Now()
	var candidates []*quest.Quest
	for _, q := range reg.Quests() {
		if quest.Enrollable(q, now) {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return false
	}

	a.logger.Info("auto-accepting quests", slog.Int("count", len(candidates)))

	enrolledAny := false
	for _, q := range candidates {
		if err := a.pace.Wait(ctx); err != nil {
			return enrolledAny
		}
		if a.Enroll(ctx, q) {
			enrolledAny = true
			if a.onEnrolled != nil {
				a.onEnrolled(q)
			}
		}
	}
	return enrolledAny
}

// sleepCtx waits d, returning false if ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
