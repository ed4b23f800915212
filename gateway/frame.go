package gateway

import "github.com/tessara/questdrive/quest"

// Frame ops pushed by the gateway socket. READY arrives once per
// (re)connect; the rest arrive whenever the corresponding remote state
// changes.
const (
	OpReady        = "READY"
	OpPing         = "PING"
	OpPong         = "PONG"
	OpQuestsFetch  = "QUESTS_FETCH_SUCCESS"
	OpStatusUpdate = "QUEST_USER_STATUS_UPDATE"
	OpHeartbeatAck = "QUESTS_SEND_HEARTBEAT_SUCCESS"
)

// Envelope is the op discriminator read before the payload. Frames are
// decoded in two passes: the envelope selects the typed frame, then the
// whole message is decoded again into it.
type Envelope struct {
	Op string `json:"op"`
}

// PingFrame is the keepalive the client sends; the socket answers with
// an OpPong envelope.
type PingFrame struct {
	Op  string `json:"op"`
	Seq int64  `json:"seq"`
}

// QuestsPayload carries a full quest snapshot.
type QuestsPayload struct {
	Quests []*quest.Quest `json:"quests"`
}

// QuestsFrame is an OpQuestsFetch message.
type QuestsFrame struct {
	Op   string        `json:"op"`
	Data QuestsPayload `json:"d"`
}

// StatusPayload carries one quest's updated user status.
type StatusPayload struct {
	QuestID string        `json:"quest_id"`
	Status  *quest.Status `json:"user_status"`
}

// StatusFrame is an OpStatusUpdate message.
type StatusFrame struct {
	Op   string        `json:"op"`
	Data StatusPayload `json:"d"`
}

// HeartbeatPayload carries the pushed status after the remote accepted
// a heartbeat.
type HeartbeatPayload struct {
	QuestID string       `json:"quest_id"`
	Status  quest.Status `json:"user_status"`
}

// HeartbeatFrame is an OpHeartbeatAck message.
type HeartbeatFrame struct {
	Op   string           `json:"op"`
	Data HeartbeatPayload `json:"d"`
}
