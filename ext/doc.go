// Package ext defines the extension system for the engine.
//
// Extensions are notified of lifecycle events and can react to them —
// recording metrics, emitting webhooks, writing audit logs, etc.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnQuestCompleted(ctx context.Context, it *task.Item, elapsed time.Duration) error {
//	    log.Printf("quest %s completed in %s", it.Quest.ID, elapsed)
//	    return nil
//	}
//
// # Quest Lifecycle Hooks
//
//   - [QuestEnrolled] — a quest was auto-accepted into the enrolled set
//   - [QuestQueued] — a pending quest entered the processing queue
//   - [QuestStarted] — the runner began driving a quest
//   - [QuestCompleted] — a quest's task reached its target
//   - [QuestSkipped] — a quest could not be driven on this host
//   - [QuestFailed] — a quest's strategy failed
//
// # Session Hooks
//
//   - [SessionStarted] — a processing session (re)started
//   - [Shutdown] — the engine is shutting down gracefully
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface.
package ext
