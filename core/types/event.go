package types

// Event represents a typed event emitted while applying a ledger mutation.
// Attributes are flat string pairs so downstream consumers (RPC, indexers,
// log sinks) need no schema knowledge.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
