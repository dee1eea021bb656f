// Package plan compiles an editable [graph.Definition] into an immutable,
// execution-optimized Plan.
//
// # Design
//
// Compilation is deterministic for a given graph id and version; the only
// nondeterminism is the generated plan id token. Plans are never mutated
// after Compile returns and are superseded wholesale when the source
// flowVersion changes.
//
// # Security limits
//
// A decision node may declare at most 50 branches and a switch node at most
// 100 cases. Exceeding either is a compile-time failure: it signals a
// malformed or hostile flow definition, not a transient condition.
package plan
