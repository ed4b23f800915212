// Package session implements the event-driven session lifecycle: the
// debounced restart cycle, the fallback scan ticker, and the settle
// timers that reconcile the queue after pushed status changes.
//
// A session is one bindings generation plus the runner draining its
// queue. Restart triggers (connection open, quest fetches before the
// session is ready) are debounced so bursts collapse into one restart;
// the restart tears the old session down completely before binding a
// new one, so no state leaks across generations.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	questdrive "github.com/tessara/questdrive"
	"github.com/tessara/questdrive/binding"
	"github.com/tessara/questdrive/enroll"
	"github.com/tessara/questdrive/event"
	"github.com/tessara/questdrive/ext"
	"github.com/tessara/questdrive/id"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/queue"
	"github.com/tessara/questdrive/runner"
)

// State is the controller's lifecycle state.
type State int

const (
	// StateUninitialized means no session is live: either never started
	// or the last bind failed.
	StateUninitialized State = iota

	// StateInitializing means a restart is in progress.
	StateInitializing

	// StateReady means a session is live and processing.
	StateReady
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// teardownTimeout bounds how long a restart waits for the previous
// runner to wind down.
const teardownTimeout = 5 * time.Second

// Controller owns the session lifecycle.
type Controller struct {
	provider   binding.Provider
	cfg        questdrive.Config
	logger     *slog.Logger
	extensions *ext.Registry
	runnerOpts []runner.Option
	enrollOpts []enroll.Option

	bus event.Bus

	// restartMu serializes restart cycles end to end.
	restartMu sync.Mutex

	mu        sync.Mutex
	started   bool
	state     State
	sessionID id.SessionID
	bindings  *binding.Bindings
	queue     *queue.Queue
	run       *runner.Runner
	agent     *enroll.Agent
	subs      []event.Subscription
	debounce  *time.Timer
	settle    *time.Timer
	cancel    context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithRunnerOptions forwards options to every session's runner.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(c *Controller) { c.runnerOpts = opts }
}

// WithEnrollOptions forwards options to every session's enroll agent.
func WithEnrollOptions(opts ...enroll.Option) Option {
	return func(c *Controller) { c.enrollOpts = opts }
}

// New creates a session controller. Nothing runs until Start.
func New(
	provider binding.Provider,
	cfg questdrive.Config,
	logger *slog.Logger,
	extensions *ext.Registry,
	opts ...Option,
) *Controller {
	c := &Controller{
		provider:   provider,
		cfg:        cfg,
		logger:     logger,
		extensions: extensions,
		queue:      queue.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to the host's lifecycle topics and schedules the
// initial session bring-up through the same debounce as any restart.
func (c *Controller) Start(_ context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return questdrive.ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	bus, err := c.provider.EventBus()
	if err != nil {
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return questdrive.ErrBindingFailed
	}
	c.bus = bus

	c.mu.Lock()
	c.subs = []event.Subscription{
		bus.Subscribe(event.TopicConnectionOpen, func(event.Payload) { c.ScheduleRestart() }),
		bus.Subscribe(event.TopicQuestsFetched, func(event.Payload) { c.onQuestsFetched() }),
		bus.Subscribe(event.TopicQuestStatusChanged, func(event.Payload) { c.onStatusChanged() }),
	}
	c.mu.Unlock()

	c.ScheduleRestart()
	return nil
}

// Stop tears the live session down and releases every subscription and
// timer. Safe to call once after Start.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return questdrive.ErrNotStarted
	}
	c.started = false
	subs := c.subs
	c.subs = nil
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	run := c.run
	cancel := c.cancel
	c.run = nil
	c.cancel = nil
	c.bindings = nil
	c.agent = nil
	c.state = StateUninitialized
	c.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
	if cancel != nil {
		cancel()
	}
	c.queue.Clear()

	var err error
	if run != nil {
		err = run.Stop(ctx)
	}
	c.extensions.EmitShutdown(ctx)
	c.logger.Info("session controller stopped")
	return err
}

// State returns the controller's lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the live session's id. Meaningful only in StateReady.
func (c *Controller) SessionID() id.SessionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Queue exposes the processing queue, for introspection.
func (c *Controller) Queue() *queue.Queue { return c.queue }

// ScheduleRestart (re)arms the restart debounce. Every trigger within
// the window pushes the restart out; a burst of triggers collapses into
// exactly one restart.
func (c *Controller) ScheduleRestart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.cfg.DebounceWindow, c.restart)
}

// restart is the debounced restart cycle: tear down, rebind, bring up.
// Binding failure fails closed — the controller goes back to
// Uninitialized and waits for the next trigger.
func (c *Controller) restart() {
	c.restartMu.Lock()
	defer c.restartMu.Unlock()

	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.state = StateInitializing
	oldRun := c.run
	oldCancel := c.cancel
	c.run = nil
	c.cancel = nil
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	c.mu.Unlock()

	// Tear down the previous generation before binding the next: the
	// in-flight item's cleanup must finish while its overrides are live.
	if oldCancel != nil {
		oldCancel()
	}
	if oldRun != nil {
		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		if err := oldRun.Stop(ctx); err != nil {
			c.logger.Warn("previous runner did not stop cleanly", slog.String("error", err.Error()))
		}
		cancel()
	}
	c.queue.Clear()

	b, err := binding.Resolve(c.provider)
	if err != nil {
		c.logger.Warn("session bind failed", slog.String("error", err.Error()))
		c.mu.Lock()
		c.state = StateUninitialized
		c.mu.Unlock()
		return
	}

	run := runner.New(c.queue, b, c.extensions, c.cfg, c.logger, c.runnerOpts...)
	if err := run.Start(context.Background()); err != nil {
		c.logger.Error("runner start failed", slog.String("error", err.Error()))
		c.mu.Lock()
		c.state = StateUninitialized
		c.mu.Unlock()
		return
	}

	agent := enroll.New(b.API, c.logger, append([]enroll.Option{
		enroll.WithMaxAttempts(c.cfg.EnrollMaxAttempts),
		enroll.WithPause(c.cfg.EnrollPause),
		enroll.WithAutoAccept(func() bool { return c.cfg.AutoAcceptQuests }),
		enroll.WithEnrolledHook(func(q *quest.Quest) {
			c.extensions.EmitQuestEnrolled(context.Background(), q)
		}),
	}, c.enrollOpts...)...)

	sessionCtx, cancel := context.WithCancel(context.Background())
	sid := id.NewSessionID()

	c.mu.Lock()
	if !c.started {
		// Stop won the race while this restart was binding: discard the
		// session instead of bringing it up behind a stopped controller.
		c.mu.Unlock()
		cancel()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), teardownTimeout)
		_ = run.Stop(stopCtx)
		stopCancel()
		c.queue.Clear()
		c.logger.Debug("discarded session bound after stop")
		return
	}
	c.bindings = b
	c.run = run
	c.agent = agent
	c.cancel = cancel
	c.sessionID = sid
	c.state = StateReady
	c.mu.Unlock()

	go c.scanLoop(sessionCtx)

	c.extensions.EmitSessionStarted(context.Background(), sid)
	c.logger.Info("session started",
		slog.String("session_id", sid.String()),
		slog.Bool("desktop", b.Desktop),
	)

	_ = c.Scan(sessionCtx)
}

// scanLoop is the fallback sweep: even with no pushed events, the queue
// is reconciled on a fixed interval.
func (c *Controller) scanLoop(ctx context.Context) {
	t := time.NewTicker(c.cfg.ScanInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = c.Scan(ctx)
		}
	}
}

// Scan reconciles the queue from the registry snapshot and kicks off an
// auto-accept batch in the background. If the batch enrolls anything it
// resyncs after the post-enroll delay so the new enrollments queue up.
func (c *Controller) Scan(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return questdrive.ErrSessionNotReady
	}
	b := c.bindings
	agent := c.agent
	c.mu.Unlock()

	scanID := id.NewScanID()
	c.logger.Debug("scanning quest registry", slog.String("scan_id", scanID.String()))

	c.syncQueue()

	go func() {
		if !agent.AutoAccept(ctx, b.Quests) {
			return
		}
		// Enrollments surface in the registry via pushed updates;
		// give them a moment before resyncing.
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.PostEnrollResync):
		}
		c.syncQueue()
	}()

	return nil
}

// syncQueue pushes every pending quest from the live registry into the
// queue and wakes the runner. No-op unless the session is ready.
func (c *Controller) syncQueue() {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return
	}
	b := c.bindings
	run := c.run
	c.mu.Unlock()

	added := c.queue.Sync(b.Quests.Quests(), time.Now())
	for _, q := range added {
		c.extensions.EmitQuestQueued(context.Background(), q)
	}
	if len(added) > 0 {
		c.logger.Info("quests queued", slog.Int("count", len(added)), slog.Int("depth", c.queue.Len()))
	}
	run.Wake()
}

// onQuestsFetched reconciles immediately when ready; before the first
// successful bind it counts as a restart trigger, since quest data may
// arrive before the connection-open signal.
func (c *Controller) onQuestsFetched() {
	c.mu.Lock()
	ready := c.state == StateReady
	c.mu.Unlock()
	if ready {
		c.syncQueue()
		return
	}
	c.ScheduleRestart()
}

// onStatusChanged re-arms the settle timer: pushed status updates come
// in bursts, and the registry snapshot trails them slightly.
func (c *Controller) onStatusChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return
	}
	if c.settle != nil {
		c.settle.Stop()
	}
	c.settle = time.AfterFunc(c.cfg.StatusSettleDelay, c.syncQueue)
}
