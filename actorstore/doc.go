// Package actorstore holds the narrow request/response contract the flow
// executor speaks against the durable session-actor store, plus a
// Redis-backed reference implementation.
//
// # Protocol
//
// Five operations: Init, CheckRequest, State, Submit, Cancel. CheckRequest
// is the idempotency gate: it either returns the cached result of an
// already-processed request id or the current session snapshot for a fresh
// one, in a single round trip.
//
// # Sharding
//
// Sessions are routed to one of N shard clients by a stable hash of the
// session id. Per-session writes are expected to be serialized by the
// store; the executor never takes its own locks.
package actorstore
