// Package engine wires all questdrive subsystems together and provides
// the primary application-level API for running the quest engine
// against a host.
//
// The engine package sits above every subsystem package (session,
// runner, enroll, task, middleware, ext) and below the application
// layer: the host implements binding.Provider, Build assembles the
// stack, and Start/Stop drive it.
//
// # Building an Engine
//
//	eng, err := engine.Build(provider,
//	    engine.WithConfig(cfg),
//	    engine.WithLogger(logger),
//	    engine.WithExtension(myExtension),
//	    engine.WithMiddleware(myMiddleware),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := eng.Start(ctx); err != nil {
//	    return err
//	}
//	defer eng.Stop(ctx)
//
// # Options
//
//   - [WithConfig] — set the engine configuration
//   - [WithLogger] — set the structured logger
//   - [WithExtension] — register a lifecycle extension
//   - [WithMiddleware] — add a middleware to the execution chain
//   - [WithStrategies] — replace the task strategy set
//   - [WithTracerProvider] — set the OpenTelemetry tracer provider
//   - [WithMeterProvider] — set the OpenTelemetry meter provider
package engine
