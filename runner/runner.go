// Package runner provides the queue-draining engine core: a single
// goroutine that pops pending quests, dispatches each to its task-kind
// strategy through the middleware chain, and always advances — a
// skipped or failed item never blocks the items behind it.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	questdrive "github.com/tessara/questdrive"
	"github.com/tessara/questdrive/binding"
	"github.com/tessara/questdrive/ext"
	"github.com/tessara/questdrive/middleware"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/queue"
	"github.com/tessara/questdrive/task"
)

// Runner drains the queue strictly one item at a time. It is built for
// one bindings generation and discarded on session restart.
type Runner struct {
	queue      *queue.Queue
	bindings   *binding.Bindings
	strategies map[quest.TaskKind]task.Strategy
	extensions *ext.Registry
	cfg        questdrive.Config
	logger     *slog.Logger
	mw         middleware.Middleware

	wakeCh chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool

	activeMu sync.Mutex
	activeID string
	cancel   context.CancelFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithStrategies replaces the strategy set. Later strategies win on
// kind collisions.
func WithStrategies(strategies ...task.Strategy) Option {
	return func(r *Runner) {
		r.strategies = make(map[quest.TaskKind]task.Strategy)
		for _, s := range strategies {
			for _, k := range s.Kinds() {
				r.strategies[k] = s
			}
		}
	}
}

// WithMiddleware sets the middleware chain items run through.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(r *Runner) { r.mw = middleware.Chain(mws...) }
}

// New creates a runner over the given queue and bindings generation.
// The default strategy set covers every supported task kind.
func New(
	q *queue.Queue,
	b *binding.Bindings,
	extensions *ext.Registry,
	cfg questdrive.Config,
	logger *slog.Logger,
	opts ...Option,
) *Runner {
	r := &Runner{
		queue:      q,
		bindings:   b,
		extensions: extensions,
		cfg:        cfg,
		logger:     logger,
		mw:         middleware.Chain(),
		wakeCh:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
	}
	WithStrategies(
		task.NewVideo(),
		task.NewPlayDesktop(),
		task.NewStreamDesktop(),
		task.NewActivity(),
	)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the drain goroutine. It returns immediately.
func (r *Runner) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return questdrive.ErrAlreadyStarted
	}
	r.running = true

	r.wg.Add(1)
	go r.drainLoop()
	return nil
}

// Stop cancels the active item, stops the drain goroutine, and waits
// for it to finish or the context to expire.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	r.CancelActive()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wake nudges the drain loop: if it is idle it begins draining, if it
// is mid-item the signal coalesces and the queue is re-drained after.
func (r *Runner) Wake() {
	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
}

// Active returns the quest id currently being driven, or false when idle.
func (r *Runner) Active() (string, bool) {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()
	return r.activeID, r.activeID != ""
}

// CancelActive force-stops the item in flight, if any. The strategy's
// cleanup paths run before the loop advances.
func (r *Runner) CancelActive() {
	r.activeMu.Lock()
	cancel := r.cancel
	r.activeMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// drainLoop waits for wake signals and empties the queue, one item at a
// time. An explicit loop: each iteration pops, processes, and re-checks
// rather than re-entering through the scheduler.
func (r *Runner) drainLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			return
		case <-r.wakeCh:
		}

		for {
			select {
			case <-r.stopCh:
				return
			default:
			}

			item, ok := r.queue.Pop()
			if !ok {
				break
			}
			r.process(item)
		}
	}
}

// process drives one quest to an outcome. Every path advances.
func (r *Runner) process(q *quest.Quest) {
	// Queued items go stale: they may expire or complete while waiting.
	if !quest.Pending(q, time.Now()) {
		r.logger.Debug("dropping stale queue item", slog.String("quest_id", q.ID))
		return
	}

	kind, target, ok := q.FirstSupportedTask()
	if !ok {
		r.logger.Debug("no supported task", slog.String("quest_id", q.ID))
		return
	}

	it := &task.Item{
		Quest:    q,
		Kind:     kind,
		Target:   target,
		Bindings: r.bindings,
		Config:   r.cfg,
		Logger:   r.logger,
	}

	strategy, ok := r.strategies[kind]
	if !ok {
		r.logger.Warn("no strategy for task kind", slog.String("task_kind", string(kind)))
		r.extensions.EmitQuestSkipped(context.Background(), it, questdrive.ErrStrategyMissing)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.track(q.ID, cancel)
	defer func() {
		r.untrack()
		cancel()
	}()

	r.extensions.EmitQuestStarted(ctx, it)

	start := time.Now()
	err := r.mw(ctx, it, func(ctx context.Context) error {
		return strategy.Run(ctx, it)
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		r.extensions.EmitQuestCompleted(context.Background(), it, elapsed)
	case task.IsSkip(err):
		r.extensions.EmitQuestSkipped(context.Background(), it, err)
	case errors.Is(err, context.Canceled):
		r.logger.Debug("item cancelled", slog.String("quest_id", q.ID))
	default:
		r.extensions.EmitQuestFailed(context.Background(), it, err)
	}
}

func (r *Runner) track(questID string, cancel context.CancelFunc) {
	r.activeMu.Lock()
	r.activeID = questID
	r.cancel = cancel
	r.activeMu.Unlock()
}

func (r *Runner) untrack() {
	r.activeMu.Lock()
	r.activeID = ""
	r.cancel = nil
	r.activeMu.Unlock()
}
