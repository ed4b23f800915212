package quest

// Registry is the host's passively-observed source of truth for quests,
// updated by server-pushed events. Snapshots are safe to iterate; the
// engine never writes through this interface.
type Registry interface {
	// Quest returns the quest with the given id, or false.
	Quest(id string) (*Quest, bool)

	// Quests returns a snapshot of all known quests.
	Quests() []*Quest
}
