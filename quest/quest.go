// Package quest defines the work-item data model and the pure eligibility
// predicates shared by the enrollment and queueing passes.
//
// Quests are owned by the remote service. The engine reads them from a
// host-provided Registry and never mutates the registry's copy — it only
// sends commands that cause the remote service (and, via pushed events,
// the registry) to update them.
package quest

import (
	"math"
	"time"
)

// TaskKind is one of the fixed supported completion-task types.
type TaskKind string

// Supported task kinds. Declaration order is the dispatch priority when a
// quest carries more than one kind.
const (
	TaskWatchVideo         TaskKind = "WATCH_VIDEO"
	TaskPlayOnDesktop      TaskKind = "PLAY_ON_DESKTOP"
	TaskStreamOnDesktop    TaskKind = "STREAM_ON_DESKTOP"
	TaskPlayActivity       TaskKind = "PLAY_ACTIVITY"
	TaskWatchVideoOnMobile TaskKind = "WATCH_VIDEO_ON_MOBILE"
)

// SupportedTasks lists every kind the engine can drive, in dispatch
// priority order.
var SupportedTasks = []TaskKind{
	TaskWatchVideo,
	TaskPlayOnDesktop,
	TaskStreamOnDesktop,
	TaskPlayActivity,
	TaskWatchVideoOnMobile,
}

// Task is one completion task with its target magnitude (seconds).
type Task struct {
	Target float64 `json:"target"`
}

// TaskConfig maps task kinds to their targets.
type TaskConfig struct {
	Tasks map[TaskKind]Task `json:"tasks"`
}

// Application identifies the application a quest is bound to, for kinds
// that synthesize a running process or stream.
type Application struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Messages carries the user-facing strings of a quest.
type Messages struct {
	QuestName string `json:"quest_name"`
}

// Config is the remote-defined configuration of a quest.
type Config struct {
	ExpiresAt time.Time `json:"expires_at"`

	// ConfigVersion affects how progress is read from server responses:
	// version 1 reports a flat stream-progress counter, later versions a
	// per-kind progress map.
	ConfigVersion int `json:"config_version"`

	Application Application `json:"application"`
	Messages    Messages    `json:"messages"`

	// TaskConfig and TaskConfigV2 are mutually exclusive layouts; Tasks
	// resolves whichever is present.
	TaskConfig   *TaskConfig `json:"task_config,omitempty"`
	TaskConfigV2 *TaskConfig `json:"task_config_v2,omitempty"`
}

// Tasks returns the task map from whichever config layout is present,
// or nil if the quest carries none.
func (c Config) Tasks() map[TaskKind]Task {
	if c.TaskConfig != nil {
		return c.TaskConfig.Tasks
	}
	if c.TaskConfigV2 != nil {
		return c.TaskConfigV2.Tasks
	}
	return nil
}

// Progress is the current magnitude of one task kind.
type Progress struct {
	Value float64 `json:"value"`
}

// Status is the per-user state of a quest: enrollment, completion, and
// current progress. A nil Status means the user never interacted with
// the quest.
type Status struct {
	EnrolledAt  *time.Time `json:"enrolled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Progress map[TaskKind]Progress `json:"progress,omitempty"`

	// StreamProgressSeconds is the config-version-1 flat progress
	// counter carried by heartbeat-success pushes.
	StreamProgressSeconds float64 `json:"stream_progress_seconds,omitempty"`
}

// Quest is one unit of trackable progress with an expiry, a task-kind
// map, and enrollment/completion state.
type Quest struct {
	ID     string  `json:"id"`
	Config Config  `json:"config"`
	Status *Status `json:"user_status,omitempty"`
}

// Name returns the quest's display name.
func (q *Quest) Name() string { return q.Config.Messages.QuestName }

// FirstSupportedTask returns the first supported kind present in the
// quest's task map, in SupportedTasks order, and its target. ok is false
// when no supported kind is present.
func (q *Quest) FirstSupportedTask() (kind TaskKind, target float64, ok bool) {
	tasks := q.Config.Tasks()
	if tasks == nil {
		return "", 0, false
	}
	for _, k := range SupportedTasks {
		if t, present := tasks[k]; present {
			return k, t.Target, true
		}
	}
	return "", 0, false
}

// ProgressValue returns the quest's current progress for the given kind,
// or 0 when unknown.
func (q *Quest) ProgressValue(kind TaskKind) float64 {
	if q.Status == nil {
		return 0
	}
	return q.Status.Progress[kind].Value
}

// ProgressFrom reads a pushed status update the protocol-version-dependent
// way: config version 1 reports the flat stream counter, later versions
// the per-kind map (floored, matching the remote's accounting).
func (q *Quest) ProgressFrom(st Status, kind TaskKind) float64 {
	if q.Config.ConfigVersion == 1 {
		return st.StreamProgressSeconds
	}
	return math.Floor(st.Progress[kind].Value)
}
