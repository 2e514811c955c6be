// Package event defines the canonical event record that every provider
// adapter must produce, plus the fuzzy identity key, cross-source
// deduplication/merging, sorting, and date-range filtering that operate on it.
//
// The canonical Event is the only contract shared across components: adapters
// map their raw source payloads into it, the orchestrator concatenates it, and
// the deduplicator merges it. Nothing downstream ever touches a raw provider
// payload.
package event
