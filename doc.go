// Package questdrive provides an unattended progress-simulation engine for
// quest-style work items. Given a registry of enrollable work items, each
// carrying one of a fixed set of completion-task kinds, the engine drives
// every item to completion by emitting synthetic progress signals to the
// remote service — one item at a time, under rate limits and item expiry.
//
// QuestDrive is a library, not a service. The host supplies its capability
// surface (quest registry, event bus, HTTP client, process/stream
// registries, channel directories) through a binding.Provider and the
// engine package wires the rest:
//
//	eng, err := engine.Build(provider,
//	    engine.WithConfig(cfg),
//	    engine.WithLogger(logger),
//	)
//
// # Architecture
//
// Leaves first: quest holds the data model and eligibility predicates,
// api the remote client, enroll the auto-accept agent, queue the pending
// set, task the per-kind completion strategies, and session the debounced
// lifecycle controller. The engine package sits above all of them and
// below the host.
//
// Session, subscription, and scan identities use TypeID — type-prefixed,
// K-sortable, UUIDv7-based identifiers. Quest identities are assigned by
// the remote service and stay opaque strings.
package questdrive
