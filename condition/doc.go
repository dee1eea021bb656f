// Package condition evaluates boolean expression trees against a runtime
// context map.
//
// # Design
//
// Evaluation is a total function: every failure mode (unknown operator,
// type mismatch, denied key segment, hostile pattern, excessive nesting)
// degrades to false. The evaluator classifies, it never fails the request.
//
// # Architecture boundaries
//
// This package owns expression modelling, safe key traversal, and operator
// semantics. It performs no I/O and holds no state beyond configuration.
//
// # What this package must NOT do
//
//   - Raise errors to callers; the contract is evaluate -> bool.
//   - Read inherited or implicit data; traversal walks only explicit map keys.
//   - Import any sibling package.
package condition
