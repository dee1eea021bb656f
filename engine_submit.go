package authrim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sgrastar/authrim-sub000/actorstore"
	"github.com/sgrastar/authrim-sub000/graph"
	internalaudit "github.com/sgrastar/authrim-sub000/internal/audit"
	"github.com/sgrastar/authrim-sub000/plan"
)

// SubmitCapability processes one capability response and advances the flow.
// The request id is the idempotency key: a retried id replays the stored
// result without re-executing anything. Guard order is fixed: idempotency,
// rate limit, session age, then per-transition cycle and length caps.
func (e *Engine) SubmitCapability(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if req.SessionID == "" || req.RequestID == "" {
		return nil, errors.New("session id and request id are required")
	}

	start := e.now()

	outcome, err := e.actors.CheckRequest(ctx, req.SessionID, req.RequestID)
	if err != nil {
		return nil, mapActorErr(err)
	}
	if outcome.Found {
		e.metrics.Inc(MetricSubmitReplayed)
		var result SubmitResult
		if err := json.Unmarshal(outcome.Result, &result); err != nil {
			return nil, fmt.Errorf("decoding cached result for request %s: %w", req.RequestID, err)
		}
		return &result, nil
	}

	session := outcome.Session
	if session.Completed {
		return nil, ErrSessionCompleted
	}

	nowMs := start.UnixMilli()
	windowStart := nowMs - e.config.Flow.RateLimitWindow.Milliseconds()
	recent := make([]int64, 0, len(session.RequestTimestamps)+1)
	for _, ts := range session.RequestTimestamps {
		if ts > windowStart {
			recent = append(recent, ts)
		}
	}
	if len(recent) >= e.config.Flow.RateLimitMaxRequests {
		e.metrics.Inc(MetricSubmitRateLimited)
		e.rejectAudit(ctx, session, AuditRateLimited, ErrRateLimited)
		return nil, ErrRateLimited
	}

	if start.Sub(session.CreatedAt) > e.config.Flow.MaxSessionAge {
		e.metrics.Inc(MetricSessionExpired)
		e.rejectAudit(ctx, session, AuditSessionExpired, ErrSessionExpired)
		return nil, ErrSessionExpired
	}

	p, err := e.resolvePlan(ctx, session.TenantID, session.ClientID, session.FlowType)
	if err != nil {
		return nil, err
	}

	current := p.Node(session.CurrentNodeID)
	if current == nil {
		return nil, fmt.Errorf("%w: session %s references node %s",
			ErrNodeNotFound, session.SessionID, session.CurrentNodeID)
	}

	collected := make(map[string]any, len(session.CollectedData)+len(req.Response))
	for k, v := range session.CollectedData {
		collected[k] = v
	}
	for k, v := range req.Response {
		collected[k] = v
	}

	completedCaps := session.CompletedCapabilities
	if req.CapabilityID != "" && !containsString(completedCaps, req.CapabilityID) {
		completedCaps = append(append([]string(nil), completedCaps...), req.CapabilityID)
	}

	runtimeCtx := buildRuntimeContext(session, collected, current.ID, req.Response)
	visited := append([]string(nil), session.VisitedNodes...)

	next, err := e.successor(p, current, runtimeCtx)
	if err != nil {
		return nil, err
	}

	// terminal ends the flow with a redirect result; errorHalt ends it on an
	// error node, which still renders a contract so the failure can be shown.
	var (
		terminal  *plan.CompiledNode
		errorHalt bool
	)
advance:
	for {
		if next == "" {
			terminal = current
			break
		}

		visited = append(visited, current.ID)

		if countString(visited, next)+1 >= e.config.Flow.MaxNodeRevisits {
			e.metrics.Inc(MetricCycleBlocked)
			e.rejectAudit(ctx, session, AuditCycleBlocked, ErrCircularReference)
			return nil, fmt.Errorf("%w: node %s", ErrCircularReference, next)
		}
		if len(visited) >= e.config.Flow.MaxVisitedNodes {
			e.metrics.Inc(MetricFlowTooLong)
			e.rejectAudit(ctx, session, AuditFlowTooLong, ErrFlowTooLong)
			return nil, ErrFlowTooLong
		}

		nextNode := p.Node(next)
		if nextNode == nil {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, next)
		}

		switch nextNode.Type {
		case graph.NodeEnd:
			terminal = nextNode
			break advance
		case graph.NodeError:
			current = nextNode
			errorHalt = true
			break advance
		case graph.NodeDecision, graph.NodeSwitch:
			current = nextNode
			next, err = e.successor(p, nextNode, runtimeCtx)
			if err != nil {
				if errors.Is(err, ErrUnreachableTermination) {
					e.rejectAudit(ctx, session, AuditUnreachableTermination, err)
				}
				return nil, err
			}
		default:
			current = nextNode
			break advance
		}
	}

	var (
		result     *SubmitResult
		nextNodeID string
		completed  bool
	)
	if terminal != nil {
		nextNodeID = terminal.ID
		completed = true

		var token string
		if e.issuer != nil {
			token, err = e.issuer.Issue(session, terminal.ID, start)
			if err != nil {
				return nil, err
			}
		}
		result = &SubmitResult{
			Status:          ResultRedirect,
			SessionID:       session.SessionID,
			RedirectURI:     session.OAuthParams["redirect_uri"],
			CompletionToken: token,
			TerminalNodeID:  terminal.ID,
		}
	} else {
		nextNodeID = current.ID
		completed = errorHalt
		result = &SubmitResult{
			Status:     ResultUI,
			SessionID:  session.SessionID,
			UIContract: e.contractFor(p, current, nil),
		}
		if errorHalt {
			result.TerminalNodeID = current.ID
		}
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	err = e.actors.Submit(ctx, actorstore.SubmitRequest{
		SessionID:             session.SessionID,
		RequestID:             req.RequestID,
		CapabilityID:          req.CapabilityID,
		Response:              req.Response,
		Result:                encoded,
		NextNodeID:            nextNodeID,
		VisitedNodes:          visited,
		CompletedCapabilities: completedCaps,
		CollectedData:         collected,
		RequestTimestamps:     append(recent, nowMs),
		Completed:             completed,
	})
	if err != nil {
		return nil, mapActorErr(err)
	}

	e.metrics.Inc(MetricSubmitSuccess)
	e.metrics.Observe(MetricSubmitLatency, e.now().Sub(start))

	eventType := AuditFlowSubmit
	if completed {
		e.metrics.Inc(MetricFlowCompleted)
		eventType = AuditFlowCompleted
	}
	e.emitAudit(ctx, internalaudit.Event{
		EventType: eventType,
		TenantID:  session.TenantID,
		ClientID:  session.ClientID,
		SessionID: session.SessionID,
		FlowID:    session.FlowID,
		NodeID:    nextNodeID,
		Success:   true,
	})
	e.logger.Debug("capability submitted",
		"sessionId", session.SessionID, "node", nextNodeID, "completed", completed)

	return result, nil
}

func (e *Engine) rejectAudit(ctx context.Context, session *actorstore.Session, eventType string, cause error) {
	e.emitAudit(ctx, internalaudit.Event{
		EventType: eventType,
		TenantID:  session.TenantID,
		ClientID:  session.ClientID,
		SessionID: session.SessionID,
		FlowID:    session.FlowID,
		NodeID:    session.CurrentNodeID,
		Success:   false,
		Error:     ErrorCode(cause),
	})
}

func mapActorErr(err error) error {
	switch {
	case errors.Is(err, actorstore.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, actorstore.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrActorUnavailable, err)
	default:
		return err
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func countString(list []string, s string) int {
	n := 0
	for _, item := range list {
		if item == s {
			n++
		}
	}
	return n
}
