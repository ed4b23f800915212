package engine

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	questdrive "github.com/tessara/questdrive"
	"github.com/tessara/questdrive/binding"
	"github.com/tessara/questdrive/ext"
	mw "github.com/tessara/questdrive/middleware"
	"github.com/tessara/questdrive/observability"
	"github.com/tessara/questdrive/runner"
	"github.com/tessara/questdrive/session"
	"github.com/tessara/questdrive/task"
)

// meterName and tracerName are the instrumentation scope names used
// when a custom provider is supplied.
const (
	meterName  = "github.com/tessara/questdrive"
	tracerName = "github.com/tessara/questdrive"
)

// Engine is the assembled quest engine: the session controller plus
// the cross-cutting stack built around it.
type Engine struct {
	provider   binding.Provider
	cfg        questdrive.Config
	logger     *slog.Logger
	extensions *ext.Registry
	controller *session.Controller

	mws        []mw.Middleware
	strategies []task.Strategy

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	// Deferred extension registrations: the registry is created during
	// Build, after options are collected.
	pendingExts []ext.Extension
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the engine configuration. Defaults to
// questdrive.DefaultConfig().
func WithConfig(cfg questdrive.Config) Option {
	return func(eng *Engine) { eng.cfg = cfg }
}

// WithLogger sets the structured logger. Defaults to a text handler on
// stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(eng *Engine) { eng.logger = logger }
}

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) { eng.pendingExts = append(eng.pendingExts, e) }
}

// WithMiddleware adds middleware to the engine's chain, after the
// built-in stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) { eng.mws = append(eng.mws, m) }
}

// WithStrategies replaces the task strategy set. If not set, the
// default strategies cover every supported task kind.
func WithStrategies(strategies ...task.Strategy) Option {
	return func(eng *Engine) { eng.strategies = strategies }
}

// WithTracerProvider sets a custom OTel TracerProvider. When set, the
// tracing middleware uses this provider instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) { eng.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider. When set, both
// the metrics middleware and the observability extension use this
// provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) { eng.meterProvider = mp }
}

// Build assembles an Engine around the host's provider.
func Build(provider binding.Provider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, questdrive.ErrNoProvider
	}

	eng := &Engine{
		provider: provider,
		cfg:      questdrive.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	eng.extensions = ext.NewRegistry(eng.logger)
	for _, e := range eng.pendingExts {
		eng.extensions.Register(e)
	}
	eng.pendingExts = nil

	// Observability extension: custom meter provider if set, else global.
	var obsExt *observability.MetricsExtension
	if eng.meterProvider != nil {
		obsExt = observability.NewMetricsExtensionWithMeter(eng.meterProvider.Meter(meterName))
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)

	tracingMw := mw.Tracing()
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer(tracerName))
	}
	metricsMw := mw.Metrics()
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter(meterName))
	}

	// Built-in middleware stack: recover → tracing → metrics → logging.
	defaultMws := []mw.Middleware{
		mw.Recover(eng.logger),
		tracingMw,
		metricsMw,
	}
	if eng.cfg.LogProgress {
		defaultMws = append(defaultMws, mw.Logging(eng.logger))
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)

	runnerOpts := []runner.Option{runner.WithMiddleware(allMws...)}
	if len(eng.strategies) > 0 {
		runnerOpts = append(runnerOpts, runner.WithStrategies(eng.strategies...))
	}

	eng.controller = session.New(provider, eng.cfg, eng.logger, eng.extensions,
		session.WithRunnerOptions(runnerOpts...),
	)

	return eng, nil
}

// Start brings the engine up: lifecycle subscriptions are installed and
// the initial session bring-up is scheduled.
func (eng *Engine) Start(ctx context.Context) error {
	return eng.controller.Start(ctx)
}

// Stop gracefully shuts the engine down.
func (eng *Engine) Stop(ctx context.Context) error {
	return eng.controller.Stop(ctx)
}

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Controller returns the session controller.
func (eng *Engine) Controller() *session.Controller { return eng.controller }

// Config returns the engine configuration.
func (eng *Engine) Config() questdrive.Config { return eng.cfg }

// Logger returns the engine's logger.
func (eng *Engine) Logger() *slog.Logger { return eng.logger }
