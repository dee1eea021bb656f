// Package audit provides the audit event model, sink interfaces, and the
// asynchronous dispatcher used by the flow engine.
//
// Events are emitted best-effort: the dispatcher never blocks a request
// path beyond its configured buffering policy, and a full buffer with
// DropIfFull set increments a drop counter instead of stalling.
package audit
