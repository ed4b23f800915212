package registry

// Channel is one voice-capable channel the host knows about.
type Channel struct {
	ID      string `json:"id"`
	GuildID string `json:"guild_id,omitempty"`
}

// ChannelDirectory is the host's directory of the user's private channels.
type ChannelDirectory interface {
	// SortedPrivateChannels returns the user's private channels in the
	// host's display order.
	SortedPrivateChannels() []Channel
}

// GuildChannels groups one guild's voice channels.
type GuildChannels struct {
	GuildID string
	Voice   []Channel
}

// GuildDirectory is the host's directory of guild channels.
type GuildDirectory interface {
	// GuildChannels returns every known guild with its voice channels.
	GuildChannels() []GuildChannels
}
