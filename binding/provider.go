// Package binding defines the host capability boundary. The host
// implements Provider — one method per capability, discovery mechanics
// hidden — and Resolve turns it into one Bindings generation, failing
// closed when a required capability is missing.
package binding

import (
	"errors"
	"fmt"

	"github.com/tessara/questdrive/api"
	"github.com/tessara/questdrive/event"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/registry"
)

// ErrUnavailable is returned by Provider methods for capabilities the
// host cannot supply on this platform.
var ErrUnavailable = errors.New("binding: capability unavailable")

// Provider is implemented by the host. Each method either returns a live
// handle or an error; resolution mechanics (bundle walking, module
// discovery) stay on the host's side of this interface.
type Provider interface {
	// QuestRegistry returns the quest source of truth. Required.
	QuestRegistry() (quest.Registry, error)

	// EventBus returns the host's event dispatcher. Required.
	EventBus() (event.Bus, error)

	// APIClient returns the remote-service client. Required.
	APIClient() (api.Client, error)

	// ProcessRegistry returns the running-process registry. Optional:
	// hosts without one cause play-on-desktop items to be skipped.
	ProcessRegistry() (registry.ProcessRegistry, error)

	// StreamRegistry returns the active-stream registry. Optional.
	StreamRegistry() (registry.StreamRegistry, error)

	// ChannelDirectory returns the private-channel directory. Optional.
	ChannelDirectory() (registry.ChannelDirectory, error)

	// GuildDirectory returns the guild-channel directory. Optional.
	GuildDirectory() (registry.GuildDirectory, error)

	// IsDesktop reports whether the host runs as a desktop client.
	// Desktop-only task kinds are skipped elsewhere.
	IsDesktop() bool
}

// Bindings is one resolved capability generation. It is destroyed and
// rebuilt on every session restart; nothing in it survives a restart.
type Bindings struct {
	Quests  quest.Registry
	Bus     event.Bus
	API     api.Client
	Process *registry.ProcessOverride
	Stream  *registry.StreamOverride
	Chans   registry.ChannelDirectory
	Guilds  registry.GuildDirectory
	Desktop bool
}

// Resolve binds every capability. The three required handles (quests,
// bus, api) fail closed: any error aborts resolution and returns no
// bindings. Optional handles resolve to nil facades and degrade to
// per-item skips.
func Resolve(p Provider) (*Bindings, error) {
	quests, err := p.QuestRegistry()
	if err != nil {
		return nil, fmt.Errorf("binding: quest registry: %w", err)
	}
	bus, err := p.EventBus()
	if err != nil {
		return nil, fmt.Errorf("binding: event bus: %w", err)
	}
	client, err := p.APIClient()
	if err != nil {
		return nil, fmt.Errorf("binding: api client: %w", err)
	}

	b := &Bindings{
		Quests:  quests,
		Bus:     bus,
		API:     client,
		Desktop: p.IsDesktop(),
	}

	if procs, procErr := p.ProcessRegistry(); procErr == nil && procs != nil {
		b.Process = registry.NewProcessOverride(procs)
	}
	if streams, streamErr := p.StreamRegistry(); streamErr == nil && streams != nil {
		b.Stream = registry.NewStreamOverride(streams)
	}
	if chans, chanErr := p.ChannelDirectory(); chanErr == nil {
		b.Chans = chans
	}
	if guilds, guildErr := p.GuildDirectory(); guildErr == nil {
		b.Guilds = guilds
	}

	return b, nil
}
