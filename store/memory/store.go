// Package memory provides fully in-memory host capability
// implementations: a mutable quest registry, settable process, stream,
// and channel directories, and a binding.Provider wiring them together.
// Safe for concurrent access. Intended for unit testing and development.
package memory

import (
	"errors"
	"sync"

	"github.com/tessara/questdrive/api"
	"github.com/tessara/questdrive/binding"
	"github.com/tessara/questdrive/event"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/registry"
)

// Compile-time interface checks.
var (
	_ quest.Registry            = (*QuestRegistry)(nil)
	_ registry.ProcessRegistry  = (*ProcessRegistry)(nil)
	_ registry.StreamRegistry   = (*StreamRegistry)(nil)
	_ registry.ChannelDirectory = (*ChannelDirectory)(nil)
	_ registry.GuildDirectory   = (*GuildDirectory)(nil)
	_ binding.Provider          = (*Provider)(nil)
)

// QuestRegistry is a mutable in-memory quest source of truth.
type QuestRegistry struct {
	mu     sync.RWMutex
	quests map[string]*quest.Quest
	order  []string
}

// NewQuestRegistry returns an empty quest registry.
func NewQuestRegistry() *QuestRegistry {
	return &QuestRegistry{quests: make(map[string]*quest.Quest)}
}

// Put inserts or replaces a quest.
func (r *QuestRegistry) Put(q *quest.Quest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.quests[q.ID]; !exists {
		r.order = append(r.order, q.ID)
	}
	r.quests[q.ID] = q
}

// SetStatus replaces a quest's user status, the way pushed updates do.
func (r *QuestRegistry) SetStatus(questID string, st *quest.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quests[questID]
	if !ok {
		return false
	}
	q.Status = st
	return true
}

// Quest implements quest.Registry.
func (r *QuestRegistry) Quest(questID string) (*quest.Quest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quests[questID]
	return q, ok
}

// Quests implements quest.Registry. Insertion order is stable.
func (r *QuestRegistry) Quests() []*quest.Quest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*quest.Quest, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.quests[id])
	}
	return out
}

// ProcessRegistry is a settable in-memory running-process list.
type ProcessRegistry struct {
	mu    sync.RWMutex
	procs []registry.Process
}

// NewProcessRegistry returns an empty process registry.
func NewProcessRegistry() *ProcessRegistry { return &ProcessRegistry{} }

// Set replaces the reported process list.
func (r *ProcessRegistry) Set(procs ...registry.Process) {
	r.mu.Lock()
	r.procs = procs
	r.mu.Unlock()
}

// RunningProcesses implements registry.ProcessRegistry.
func (r *ProcessRegistry) RunningProcesses() []registry.Process {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]registry.Process, len(r.procs))
	copy(out, r.procs)
	return out
}

// ProcessForPID implements registry.ProcessRegistry.
func (r *ProcessRegistry) ProcessForPID(pid int) (registry.Process, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.procs {
		if p.PID == pid {
			return p, true
		}
	}
	return registry.Process{}, false
}

// StreamRegistry is a settable in-memory active-stream slot.
type StreamRegistry struct {
	mu   sync.RWMutex
	meta *registry.StreamMetadata
}

// NewStreamRegistry returns a stream registry with no active stream.
func NewStreamRegistry() *StreamRegistry { return &StreamRegistry{} }

// SetActive replaces the active stream. Pass nil to clear.
func (r *StreamRegistry) SetActive(m *registry.StreamMetadata) {
	r.mu.Lock()
	r.meta = m
	r.mu.Unlock()
}

// ActiveStreamMetadata implements registry.StreamRegistry.
func (r *StreamRegistry) ActiveStreamMetadata() *registry.StreamMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.meta == nil {
		return nil
	}
	m := *r.meta
	return &m
}

// ChannelDirectory is a settable in-memory private-channel list.
type ChannelDirectory struct {
	mu    sync.RWMutex
	chans []registry.Channel
}

// NewChannelDirectory returns an empty channel directory.
func NewChannelDirectory() *ChannelDirectory { return &ChannelDirectory{} }

// Set replaces the private-channel list.
func (d *ChannelDirectory) Set(chans ...registry.Channel) {
	d.mu.Lock()
	d.chans = chans
	d.mu.Unlock()
}

// SortedPrivateChannels implements registry.ChannelDirectory.
func (d *ChannelDirectory) SortedPrivateChannels() []registry.Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]registry.Channel, len(d.chans))
	copy(out, d.chans)
	return out
}

// GuildDirectory is a settable in-memory guild-channel list.
type GuildDirectory struct {
	mu     sync.RWMutex
	guilds []registry.GuildChannels
}

// NewGuildDirectory returns an empty guild directory.
func NewGuildDirectory() *GuildDirectory { return &GuildDirectory{} }

// Set replaces the guild list.
func (d *GuildDirectory) Set(guilds ...registry.GuildChannels) {
	d.mu.Lock()
	d.guilds = guilds
	d.mu.Unlock()
}

// GuildChannels implements registry.GuildDirectory.
func (d *GuildDirectory) GuildChannels() []registry.GuildChannels {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]registry.GuildChannels, len(d.guilds))
	copy(out, d.guilds)
	return out
}

// Provider is an in-memory binding.Provider. Required capabilities must
// be non-nil; optional capabilities left nil resolve as unavailable.
type Provider struct {
	Registry *QuestRegistry
	Bus      event.Bus
	Client   api.Client

	Processes *ProcessRegistry
	Streams   *StreamRegistry
	Channels  *ChannelDirectory
	Guilds    *GuildDirectory
	Desktop   bool
}

// NewProvider creates a Provider with a fresh quest registry and the
// given bus and client. Optional capabilities start unavailable.
func NewProvider(bus event.Bus, client api.Client) *Provider {
	return &Provider{
		Registry: NewQuestRegistry(),
		Bus:      bus,
		Client:   client,
	}
}

// QuestRegistry implements binding.Provider.
func (p *Provider) QuestRegistry() (quest.Registry, error) {
	if p.Registry == nil {
		return nil, errors.New("memory: no quest registry")
	}
	return p.Registry, nil
}

// EventBus implements binding.Provider.
func (p *Provider) EventBus() (event.Bus, error) {
	if p.Bus == nil {
		return nil, errors.New("memory: no event bus")
	}
	return p.Bus, nil
}

// APIClient implements binding.Provider.
func (p *Provider) APIClient() (api.Client, error) {
	if p.Client == nil {
		return nil, errors.New("memory: no api client")
	}
	return p.Client, nil
}

// ProcessRegistry implements binding.Provider.
func (p *Provider) ProcessRegistry() (registry.ProcessRegistry, error) {
	if p.Processes == nil {
		return nil, binding.ErrUnavailable
	}
	return p.Processes, nil
}

// StreamRegistry implements binding.Provider.
func (p *Provider) StreamRegistry() (registry.StreamRegistry, error) {
	if p.Streams == nil {
		return nil, binding.ErrUnavailable
	}
	return p.Streams, nil
}

// ChannelDirectory implements binding.Provider.
func (p *Provider) ChannelDirectory() (registry.ChannelDirectory, error) {
	if p.Channels == nil {
		return nil, binding.ErrUnavailable
	}
	return p.Channels, nil
}

// GuildDirectory implements binding.Provider.
func (p *Provider) GuildDirectory() (registry.GuildDirectory, error) {
	if p.Guilds == nil {
		return nil, binding.ErrUnavailable
	}
	return p.Guilds, nil
}

// IsDesktop implements binding.Provider.
func (p *Provider) IsDesktop() bool { return p.Desktop }
