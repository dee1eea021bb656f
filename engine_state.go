package authrim

import (
	"context"

	internalaudit "github.com/sgrastar/authrim-sub000/internal/audit"
)

// GetFlowState returns a read-only snapshot of a live session, including the
// UI contract of its current node so a reloaded client can re-render without
// submitting anything.
func (e *Engine) GetFlowState(ctx context.Context, sessionID string) (*FlowState, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	session, err := e.actors.State(ctx, sessionID)
	if err != nil {
		return nil, mapActorErr(err)
	}
	e.metrics.Inc(MetricStateReads)

	state := &FlowState{
		SessionID:     session.SessionID,
		FlowID:        session.FlowID,
		CurrentNodeID: session.CurrentNodeID,
		VisitedNodes:  session.VisitedNodes,
		CollectedData: session.CollectedData,
		Completed:     session.Completed,
	}
	if session.Completed {
		return state, nil
	}

	// Contract rendering is best effort; a definition change between reads
	// must not make the snapshot itself unavailable.
	p, err := e.resolvePlan(ctx, session.TenantID, session.ClientID, session.FlowType)
	if err != nil {
		e.logger.Warn("plan unavailable for state read",
			"sessionId", sessionID, "flowType", session.FlowType, "error", err)
		return state, nil
	}
	if node := p.Node(session.CurrentNodeID); node != nil {
		state.UIContract = e.contractFor(p, node, nil)
	}

	return state, nil
}

// CancelFlow abandons a session. Cancelling an unknown or already-cancelled
// session succeeds.
func (e *Engine) CancelFlow(ctx context.Context, sessionID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.actors.Cancel(ctx, sessionID); err != nil {
		return mapActorErr(err)
	}

	e.metrics.Inc(MetricFlowCancelled)
	e.emitAudit(ctx, internalaudit.Event{
		EventType: AuditFlowCancelled,
		SessionID: sessionID,
		Success:   true,
	})
	return nil
}
