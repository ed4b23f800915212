package questdrive

import "time"

// Config holds every timing and behavior knob for the engine. All
// durations have production defaults from DefaultConfig; tests shrink
// them instead of faking the clock.
type Config struct {
	// AutoAcceptQuests gates the enrollment agent's batch driver. When
	// false, eligible unenrolled quests are left alone.
	AutoAcceptQuests bool

	// LogProgress gates per-step diagnostic output (progress lines and
	// the logging middleware). It has no behavioral effect.
	LogProgress bool

	// DebounceWindow collapses bursts of connection-open signals into a
	// single session restart. The remote emits one signal per shard and
	// shards connect in quick succession.
	DebounceWindow time.Duration

	// ScanInterval is the periodic fallback rescan cadence, catching
	// anything the event-driven triggers missed.
	ScanInterval time.Duration

	// StatusSettleDelay is how long to wait after a quest-status-changed
	// signal before resyncing the queue, so the registry has persisted
	// the change.
	StatusSettleDelay time.Duration

	// PostEnrollResync is the delay before one extra queue sync after
	// the auto-accept pass enrolled anything.
	PostEnrollResync time.Duration

	// EnrollMaxAttempts bounds rate-limited enroll retries per quest.
	EnrollMaxAttempts int

	// EnrollPause is the mandatory pause between enroll calls in the
	// auto-accept batch, regardless of outcome. The batch is serialized
	// on purpose: all calls share one server-side rate limit.
	EnrollPause time.Duration

	// VideoTick is the polling interval of the video strategies.
	VideoTick time.Duration

	// VideoSpeed is how many playhead seconds each video tick advances.
	VideoSpeed float64

	// VideoSlack is how far (in seconds) the reported playhead may run
	// ahead of real elapsed time before the server rejects the push.
	VideoSlack float64

	// ActivityBeatInterval is the heartbeat cadence of the play-activity
	// strategy.
	ActivityBeatInterval time.Duration
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		AutoAcceptQuests:     false,
		LogProgress:          true,
		DebounceWindow:       2 * time.Second,
		ScanInterval:         60 * time.Second,
		StatusSettleDelay:    500 * time.Millisecond,
		PostEnrollResync:     1500 * time.Millisecond,
		EnrollMaxAttempts:    3,
		EnrollPause:          3 * time.Second,
		VideoTick:            time.Second,
		VideoSpeed:           7,
		VideoSlack:           10,
		ActivityBeatInterval: 20 * time.Second,
	}
}
