package actorstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when the session id resolves to nothing.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists is returned when Init collides with a live session id.
	ErrSessionExists = errors.New("session already exists")
	// ErrUnavailable wraps backend transport failures.
	ErrUnavailable = errors.New("actor store unavailable")
)

// Session is the durable per-session state owned by the actor store. The
// executor reads it every request and never caches it in process.
type Session struct {
	SessionID             string            `json:"sessionId"`
	FlowID                string            `json:"flowId"`
	FlowType              string            `json:"flowType"`
	TenantID              string            `json:"tenantId,omitempty"`
	ClientID              string            `json:"clientId,omitempty"`
	CurrentNodeID         string            `json:"currentNodeId"`
	VisitedNodes          []string          `json:"visitedNodes,omitempty"`
	CompletedCapabilities []string          `json:"completedCapabilities,omitempty"`
	CollectedData         map[string]any    `json:"collectedData,omitempty"`
	RequestTimestamps     []int64           `json:"requestTimestamps,omitempty"`
	OAuthParams           map[string]string `json:"oauthParams,omitempty"`
	Completed             bool              `json:"completed,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	ExpiresAt             time.Time         `json:"expiresAt"`
}

// InitRequest creates a session positioned at the first node actually shown
// to the user.
type InitRequest struct {
	SessionID   string
	FlowID      string
	FlowType    string
	TenantID    string
	ClientID    string
	EntryNodeID string
	TTL         time.Duration
	OAuthParams map[string]string
}

// SubmitRequest is the single write operation of a successful capability
// submit. Result is stored under RequestID so a retry of the same request
// id replays it without re-execution.
type SubmitRequest struct {
	SessionID             string
	RequestID             string
	CapabilityID          string
	Response              map[string]any
	Result                json.RawMessage
	NextNodeID            string
	VisitedNodes          []string
	CompletedCapabilities []string
	CollectedData         map[string]any
	RequestTimestamps     []int64
	Completed             bool
}

// CheckOutcome is the CheckRequest response: either the cached result of a
// processed request id, or the live session for a fresh one.
type CheckOutcome struct {
	Found   bool
	Result  json.RawMessage
	Session *Session
}

// Client is the transport-agnostic surface the executor depends on. The
// production deployment speaks it over a per-session-routed RPC; the
// in-repo reference implementation is [Store].
type Client interface {
	Init(ctx context.Context, req InitRequest) (*Session, error)
	CheckRequest(ctx context.Context, sessionID, requestID string) (CheckOutcome, error)
	State(ctx context.Context, sessionID string) (*Session, error)
	Submit(ctx context.Context, req SubmitRequest) error
	Cancel(ctx context.Context, sessionID string) error
}
