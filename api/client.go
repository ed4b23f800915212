// Package api defines the remote-service client boundary: the logical
// operations the engine issues (enroll, video progress, heartbeat,
// application lookup) and the typed failure values that drive retry
// control flow.
package api

import (
	"context"

	"github.com/tessara/questdrive/quest"
)

// EnrollRequest is the fixed enrollment metadata sent with every enroll
// command. The values mirror what the first-party client sends; the
// remote rejects enrollments without them.
type EnrollRequest struct {
	Location           int    `json:"location"`
	IsTargeted         bool   `json:"is_targeted"`
	MetadataRaw        []byte `json:"metadata_raw"`
	MetadataSealed     []byte `json:"metadata_sealed"`
	TrafficMetadataRaw []byte `json:"traffic_metadata_raw"`
}

// DefaultEnrollRequest returns the enrollment metadata the engine sends.
func DefaultEnrollRequest() EnrollRequest {
	return EnrollRequest{Location: 11}
}

// VideoProgressResponse is the remote's answer to a video-progress push.
type VideoProgressResponse struct {
	// CompletedAt is set once the remote considers the task done.
	CompletedAt *string `json:"completed_at,omitempty"`
}

// Completed reports whether the push completed the task.
func (r VideoProgressResponse) Completed() bool { return r.CompletedAt != nil }

// HeartbeatResponse is the remote's answer to an activity heartbeat.
type HeartbeatResponse struct {
	Progress map[quest.TaskKind]quest.Progress `json:"progress"`
}

// Value returns the reported progress for the given kind.
func (r HeartbeatResponse) Value(kind quest.TaskKind) float64 {
	return r.Progress[kind].Value
}

// Executable is one platform-specific executable descriptor of an
// application.
type Executable struct {
	OS         string `json:"os"`
	Name       string `json:"name"`
	IsLauncher bool   `json:"is_launcher"`
}

// Application is the public metadata of an application, used to
// synthesize a plausible running-process record.
type Application struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Executables []Executable `json:"executables"`
}

// Client is the remote-service boundary. Implementations must surface
// rate limiting as *RateLimitedError and other failure responses as
// *StatusError; any other error is transport-level.
type Client interface {
	// Enroll sends one idempotent enroll command for the quest.
	Enroll(ctx context.Context, questID string, req EnrollRequest) error

	// VideoProgress reports a playhead position (seconds) for a video
	// task.
	VideoProgress(ctx context.Context, questID string, timestamp float64) (VideoProgressResponse, error)

	// Heartbeat reports activity presence under the given stream key.
	// A terminal heartbeat closes out the task.
	Heartbeat(ctx context.Context, questID, streamKey string, terminal bool) (HeartbeatResponse, error)

	// PublicApplication fetches the public metadata for an application.
	PublicApplication(ctx context.Context, applicationID string) (Application, error)
}
