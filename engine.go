package authrim

import (
	"context"
	"log/slog"
	"time"

	"github.com/sgrastar/authrim-sub000/actorstore"
	"github.com/sgrastar/authrim-sub000/condition"
	internalaudit "github.com/sgrastar/authrim-sub000/internal/audit"
	"github.com/sgrastar/authrim-sub000/plan"
)

// Engine drives authentication flows: it resolves flow definitions, compiles
// and caches execution plans, and advances sessions one capability submit at
// a time. All per-session state lives in the actor store; the Engine itself
// holds only immutable wiring and is safe for concurrent use.
//
// Construct it with [New] and the builder's With methods.
type Engine struct {
	config    Config
	registry  *Registry
	plans     *planCache
	actors    actorstore.Client
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	issuer    CompletionIssuer
	evaluator *condition.Evaluator
	logger    *slog.Logger

	now func() time.Time
}

// Close stops background workers. The Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded under
// backpressure since startup.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}, Histograms: map[MetricID][]uint64{}}
	}
	return e.metrics.Snapshot()
}

// InvalidatePlan drops the cached plan for a graph id. Editors call this
// after publishing; version bumps invalidate lazily without it.
func (e *Engine) InvalidatePlan(graphID string) {
	if e == nil {
		return
	}
	e.plans.invalidate(graphID)
}

func (e *Engine) ready() error {
	if e == nil || e.actors == nil || e.registry == nil {
		return ErrEngineNotReady
	}
	return nil
}

// contractFor renders the UI contract for a compiled node.
func (e *Engine) contractFor(p *plan.Plan, node *plan.CompiledNode, runtimeState map[string]any) *UIContract {
	capabilities := node.Capabilities
	if capabilities == nil {
		capabilities = []plan.Capability{}
	}
	return &UIContract{
		FlowID:            p.GraphID,
		ProfileID:         p.ProfileID,
		UIContractVersion: UIContractVersion,
		Node: UINode{
			ID:           node.ID,
			Type:         string(node.Type),
			Intent:       node.Intent,
			Capabilities: capabilities,
		},
		RuntimeState: runtimeState,
	}
}

// resolvePlan fetches the effective definition and its compiled plan.
func (e *Engine) resolvePlan(ctx context.Context, tenantID, clientID, flowType string) (*plan.Plan, error) {
	def, err := e.registry.Resolve(ctx, tenantID, clientID, flowType)
	if err != nil {
		return nil, err
	}
	return e.plans.resolve(def, e.metrics)
}
