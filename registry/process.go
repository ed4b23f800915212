// Package registry defines the host-state capability interfaces (running
// processes, active stream, channel directories) and the override facades
// the engine uses to present synthetic state through them.
//
// Overrides replace in-place accessor patching: the facade owns the
// save/restore cycle with explicit Set/Clear semantics, so restoration is
// unconditional and testable on every exit path.
package registry

import (
	"sync"
	"time"
)

// Process is one running-process record as the host reports it.
type Process struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ProcessName string    `json:"process_name"`
	ExeName     string    `json:"exe_name"`
	ExePath     string    `json:"exe_path"`
	CmdLine     string    `json:"cmd_line"`
	PID         int       `json:"pid"`
	PIDPath     []int     `json:"pid_path"`
	Hidden      bool      `json:"hidden"`
	IsLauncher  bool      `json:"is_launcher"`
	Start       time.Time `json:"start"`
}

// ProcessRegistry is the host's view of running processes.
type ProcessRegistry interface {
	// RunningProcesses returns the processes currently reported.
	RunningProcesses() []Process

	// ProcessForPID returns the process with the given pid, or false.
	ProcessForPID(pid int) (Process, bool)
}

// ProcessOverride wraps a ProcessRegistry and, while an override is set,
// reports exactly the synthetic process instead of the base registry's
// state. Clear restores pass-through behavior.
type ProcessOverride struct {
	mu   sync.RWMutex
	base ProcessRegistry
	fake *Process
}

// NewProcessOverride creates a pass-through facade over base.
func NewProcessOverride(base ProcessRegistry) *ProcessOverride {
	return &ProcessOverride{base: base}
}

// Set installs the synthetic process, replacing any previous override.
func (o *ProcessOverride) Set(p Process) {
	o.mu.Lock()
	o.fake = &p
	o.mu.Unlock()
}

// Clear removes the override, restoring the base registry's reporting.
// Clearing an unset override is a no-op.
func (o *ProcessOverride) Clear() {
	o.mu.Lock()
	o.fake = nil
	o.mu.Unlock()
}

// Active returns the current override, or false when passing through.
func (o *ProcessOverride) Active() (Process, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.fake == nil {
		return Process{}, false
	}
	return *o.fake, true
}

// RunningProcesses implements ProcessRegistry.
func (o *ProcessOverride) RunningProcesses() []Process {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.fake != nil {
		return []Process{*o.fake}
	}
	if o.base == nil {
		return nil
	}
	return o.base.RunningProcesses()
}

// ProcessForPID implements ProcessRegistry.
func (o *ProcessOverride) ProcessForPID(pid int) (Process, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.fake != nil {
		if pid == o.fake.PID {
			return *o.fake, true
		}
		return Process{}, false
	}
	if o.base == nil {
		return Process{}, false
	}
	return o.base.ProcessForPID(pid)
}
