package api

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitedError is the control-flow value surfaced when the remote
// answers with its rate-limit status. RetryAfter is the server-suggested
// wait; callers pad it before retrying.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("api: rate limited, retry after %s", e.RetryAfter)
}

// StatusError is any non-rate-limit failure response from the remote.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api: request failed with status %d: %s", e.Status, e.Message)
}

// IsRateLimited reports whether err is (or wraps) a rate-limit outcome,
// returning the server-suggested wait when it is.
func IsRateLimited(err error) (time.Duration, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}
