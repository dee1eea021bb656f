package authrim

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sgrastar/authrim-sub000/actorstore"
	internalaudit "github.com/sgrastar/authrim-sub000/internal/audit"
	"github.com/sgrastar/authrim-sub000/graph"
)

// InitFlow resolves the flow definition for the request, compiles it, creates
// a session positioned at the first user-visible node, and returns that
// node's UI contract.
func (e *Engine) InitFlow(ctx context.Context, req InitFlowRequest) (*InitFlowResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if req.FlowType == "" {
		e.metrics.Inc(MetricFlowInitFailure)
		return nil, fmt.Errorf("%w: flow type required", ErrFlowNotFound)
	}

	p, err := e.resolvePlan(ctx, req.TenantID, req.ClientID, req.FlowType)
	if err != nil {
		e.metrics.Inc(MetricFlowInitFailure)
		return nil, err
	}

	entry := p.Node(p.EntryNodeID)
	if entry == nil {
		e.metrics.Inc(MetricFlowInitFailure)
		return nil, fmt.Errorf("%w: plan %s has no entry node", ErrNodeNotFound, p.ID)
	}

	// Start nodes are synthetic; the session begins at their successor.
	if entry.Type == graph.NodeStart {
		entry = p.Node(entry.NextOnSuccess)
		if entry == nil {
			e.metrics.Inc(MetricFlowInitFailure)
			return nil, fmt.Errorf("%w: start node of plan %s has no successor", ErrNodeNotFound, p.ID)
		}
	}

	sessionID := uuid.NewString()
	session, err := e.actors.Init(ctx, actorstore.InitRequest{
		SessionID:   sessionID,
		FlowID:      p.GraphID,
		FlowType:    req.FlowType,
		TenantID:    req.TenantID,
		ClientID:    req.ClientID,
		EntryNodeID: entry.ID,
		TTL:         e.config.Flow.SessionTTL,
		OAuthParams: req.OAuthParams,
	})
	if err != nil {
		e.metrics.Inc(MetricFlowInitFailure)
		if errors.Is(err, actorstore.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrActorUnavailable, err)
		}
		return nil, err
	}

	e.metrics.Inc(MetricFlowInitialized)
	e.emitAudit(ctx, internalaudit.Event{
		EventType: AuditFlowInitialized,
		TenantID:  req.TenantID,
		ClientID:  req.ClientID,
		SessionID: session.SessionID,
		FlowID:    p.GraphID,
		NodeID:    entry.ID,
		Success:   true,
	})
	e.logger.Debug("flow initialized",
		"sessionId", session.SessionID, "flowId", p.GraphID, "node", entry.ID)

	return &InitFlowResult{
		SessionID:  session.SessionID,
		UIContract: e.contractFor(p, entry, nil),
	}, nil
}
