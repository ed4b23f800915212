package backoff_test

import (
	"testing"
	"time"

	"github.com/tessara/questdrive/backoff"
)

func TestConstant_ReturnsFixedDelay(t *testing.T) {
	c := backoff.NewConstant(3 * time.Second)
	for attempt := 1; attempt <= 10; attempt++ {
		if got := c.Delay(attempt); got != 3*time.Second {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, 3*time.Second)
		}
	}
}

func TestExponentialWithJitter_WithinBounds(t *testing.T) {
	e := backoff.NewExponentialWithJitter(time.Second, 10*time.Second)

	tests := []struct {
		attempt int
		max     time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 10 * time.Second}, // 16s base, capped at Max
		{20, 10 * time.Second},
	}
	for _, tt := range tests {
		for range 50 {
			got := e.Delay(tt.attempt)
			if got < 0 || got > tt.max {
				t.Fatalf("Delay(%d) = %v, want in [0, %v]", tt.attempt, got, tt.max)
			}
		}
	}
}

func TestRetryAfter_PadsSuggestion(t *testing.T) {
	if got := backoff.RetryAfter(2 * time.Second); got != 3*time.Second {
		t.Errorf("RetryAfter(2s) = %v, want 3s", got)
	}
	if got := backoff.RetryAfter(0); got != time.Second {
		t.Errorf("RetryAfter(0) = %v, want 1s", got)
	}
}

func TestDefaultReconnect_IsBounded(t *testing.T) {
	s := backoff.DefaultReconnect()
	for attempt := 1; attempt <= 30; attempt++ {
		if got := s.Delay(attempt); got > time.Minute {
			t.Fatalf("Delay(%d) = %v, exceeds 1m cap", attempt, got)
		}
	}
}
