package authrim

import (
	"io"

	internalaudit "github.com/sgrastar/authrim-sub000/internal/audit"
	"github.com/sgrastar/authrim-sub000/plan"
)

// UIContractVersion identifies the shape of [UIContract] handed to the
// presentation layer.
const UIContractVersion = "1.0"

// ResultStatus tags the outcome kind of a submit.
type ResultStatus string

const (
	// ResultUI means the flow continues: render the contained UI contract.
	ResultUI ResultStatus = "ui"
	// ResultRedirect means the flow completed: follow the redirect.
	ResultRedirect ResultStatus = "redirect"
)

// UIContract describes what the presentation layer must show or ask next.
// Its rendering is out of scope; its shape is part of this engine's output
// contract.
type UIContract struct {
	FlowID            string         `json:"flowId"`
	ProfileID         string         `json:"profileId,omitempty"`
	UIContractVersion string         `json:"uiContractVersion"`
	Node              UINode         `json:"node"`
	RuntimeState      map[string]any `json:"runtimeState,omitempty"`
}

// UINode is the node portion of a UI contract.
type UINode struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Intent       string            `json:"intent"`
	Capabilities []plan.Capability `json:"capabilities"`
}

// InitFlowRequest starts a new flow session.
type InitFlowRequest struct {
	FlowType    string
	TenantID    string
	ClientID    string
	OAuthParams map[string]string
}

// InitFlowResult is returned by [Engine.InitFlow].
type InitFlowResult struct {
	SessionID  string      `json:"sessionId"`
	UIContract *UIContract `json:"uiContract"`
}

// SubmitRequest is one capability response from the client. RequestID is
// the caller-supplied idempotency key: retrying the same id replays the
// original result without side effects.
type SubmitRequest struct {
	SessionID    string
	RequestID    string
	CapabilityID string
	Response     map[string]any
}

// SubmitResult is the outcome of a submit. It is JSON round-trippable so
// the actor store can replay it verbatim for retried request ids.
type SubmitResult struct {
	Status          ResultStatus `json:"status"`
	SessionID       string       `json:"sessionId"`
	UIContract      *UIContract  `json:"uiContract,omitempty"`
	RedirectURI     string       `json:"redirectUri,omitempty"`
	CompletionToken string       `json:"completionToken,omitempty"`
	TerminalNodeID  string       `json:"terminalNodeId,omitempty"`
}

// FlowState is the read-only snapshot returned by [Engine.GetFlowState].
type FlowState struct {
	SessionID     string         `json:"sessionId"`
	FlowID        string         `json:"flowId"`
	CurrentNodeID string         `json:"currentNodeId"`
	VisitedNodes  []string       `json:"visitedNodes,omitempty"`
	CollectedData map[string]any `json:"collectedData,omitempty"`
	Completed     bool           `json:"completed"`
	UIContract    *UIContract    `json:"uiContract,omitempty"`
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
