// Package gateway implements the push-event source: a WebSocket client
// that reads frames from the host's gateway socket, mirrors quest data
// into a registry sink, and republishes lifecycle signals onto the
// engine's event bus.
//
// The gateway is optional. Embedding hosts that already own a socket
// can publish the bus topics themselves; hosts that don't can run a
// Client and get connection-open, quests-fetched, status-changed, and
// heartbeat-success signals wired for free.
//
// Frames are encoded as JSON (text messages) or MessagePack (binary
// messages); the codec is fixed per connection.
package gateway
