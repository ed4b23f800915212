// Package event defines the event-bus boundary between the engine and
// the host: the subscribed and published topics, their typed payloads,
// and the Bus contract with explicit subscription handles.
package event

import (
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/registry"
)

// Topic names one signal on the bus.
type Topic string

// Topics the engine subscribes to (host/remote → engine) and publishes
// (engine → host).
const (
	// TopicConnectionOpen fires when the remote connection is (re)established.
	// It may fire once per shard, in quick succession.
	TopicConnectionOpen Topic = "CONNECTION_OPEN"

	// TopicQuestsFetched fires when quest data has arrived in the
	// registry. Decoupled from TopicConnectionOpen — the two may race.
	TopicQuestsFetched Topic = "QUESTS_FETCH_SUCCESS"

	// TopicQuestStatusChanged fires whenever the user's status on any
	// quest changes (accept, progress, completion).
	TopicQuestStatusChanged Topic = "QUEST_USER_STATUS_UPDATE"

	// TopicHeartbeatSuccess carries server-pushed progress for the
	// desktop play/stream task kinds.
	TopicHeartbeatSuccess Topic = "QUESTS_SEND_HEARTBEAT_SUCCESS"

	// TopicProcessChange is published by the engine when the synthetic
	// running-process record appears or disappears.
	TopicProcessChange Topic = "RUNNING_PROCESSES_CHANGE"
)

// Payload is the topic-specific event payload.
type Payload any

// HeartbeatSuccess is the payload of TopicHeartbeatSuccess: the pushed
// per-quest status after the remote accepted a heartbeat.
type HeartbeatSuccess struct {
	QuestID string
	Status  quest.Status
}

// QuestStatusChanged is the payload of TopicQuestStatusChanged.
type QuestStatusChanged struct {
	QuestID string
}

// ProcessChange is the payload of TopicProcessChange: the process
// records that appeared or disappeared since the last report.
type ProcessChange struct {
	Added   []registry.Process
	Removed []registry.Process
}

// Handler consumes one published payload. Handlers run synchronously on
// the publisher's goroutine and must not block for long.
type Handler func(p Payload)

// Subscription is the explicit handle returned at subscribe time.
// Cancel releases it; cancelling twice is a no-op.
type Subscription interface {
	Cancel()
}

// Bus is the host's event dispatcher. Implementations must contain
// handler panics: a faulting handler may not take down the bus or other
// handlers.
type Bus interface {
	// Subscribe registers a handler for a topic and returns its handle.
	Subscribe(topic Topic, h Handler) Subscription

	// Publish delivers a payload to every current subscriber of the topic.
	Publish(topic Topic, p Payload)
}
