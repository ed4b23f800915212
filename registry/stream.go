package registry

import "sync"

// StreamMetadata describes the streamer's active stream.
type StreamMetadata struct {
	ID         string  `json:"id"`
	PID        int     `json:"pid"`
	SourceName *string `json:"source_name"`
}

// StreamRegistry is the host's view of the user's active stream.
type StreamRegistry interface {
	// ActiveStreamMetadata returns the active stream, or nil when the
	// user is not streaming.
	ActiveStreamMetadata() *StreamMetadata
}

// StreamOverride wraps a StreamRegistry and, while set, reports a
// synthetic active stream.
type StreamOverride struct {
	mu   sync.RWMutex
	base StreamRegistry
	fake *StreamMetadata
}

// NewStreamOverride creates a pass-through facade over base.
func NewStreamOverride(base StreamRegistry) *StreamOverride {
	return &StreamOverride{base: base}
}

// Set installs the synthetic stream descriptor.
func (o *StreamOverride) Set(m StreamMetadata) {
	o.mu.Lock()
	o.fake = &m
	o.mu.Unlock()
}

// Clear removes the override. Clearing an unset override is a no-op.
func (o *StreamOverride) Clear() {
	o.mu.Lock()
	o.fake = nil
	o.mu.Unlock()
}

// Active returns the current override, or false when passing through.
func (o *StreamOverride) Active() (StreamMetadata, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.fake == nil {
		return StreamMetadata{}, false
	}
	return *o.fake, true
}

// ActiveStreamMetadata implements StreamRegistry.
func (o *StreamOverride) ActiveStreamMetadata() *StreamMetadata {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.fake != nil {
		m := *o.fake
		return &m
	}
	if o.base == nil {
		return nil
	}
	return o.base.ActiveStreamMetadata()
}
