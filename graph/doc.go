// Package graph models the editable, versioned form of an authentication
// flow: nodes, edges, decision branches, and switch cases.
//
// Definitions arrive from tenant-controlled storage and are untrusted until
// [Definition.Validate] passes. Validation is structural only; execution
// limits (branch and case caps) are enforced by the plan compiler.
package graph
