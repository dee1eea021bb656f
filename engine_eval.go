package authrim

import (
	"fmt"

	"github.com/sgrastar/authrim-sub000/actorstore"
	"github.com/sgrastar/authrim-sub000/condition"
	"github.com/sgrastar/authrim-sub000/graph"
	"github.com/sgrastar/authrim-sub000/plan"
)

// successor picks the next node id after node. Decision nodes take the first
// matching branch in priority order, switch nodes the first case containing
// the resolved key value, both falling back to their declared default.
// Everything else follows its success edge. An empty return with a nil error
// means graceful termination at this node.
func (e *Engine) successor(p *plan.Plan, node *plan.CompiledNode, runtimeCtx map[string]any) (string, error) {
	switch node.Type {
	case graph.NodeDecision:
		return e.decide(p, node, runtimeCtx)
	case graph.NodeSwitch:
		return e.route(p, node, runtimeCtx)
	default:
		return node.NextOnSuccess, nil
	}
}

func (e *Engine) decide(p *plan.Plan, node *plan.CompiledNode, runtimeCtx map[string]any) (string, error) {
	for i := range node.Branches {
		branch := &node.Branches[i]
		if branch.Condition != nil && !e.evaluator.Evaluate(branch.Condition, runtimeCtx) {
			continue
		}
		if t := p.TransitionByHandle(node.ID, branch.ID); t != nil {
			return t.Target, nil
		}
		e.logger.Warn("decision branch has no outgoing edge",
			"flowId", p.GraphID, "node", node.ID, "branch", branch.ID)
	}

	if node.DefaultBranch != "" {
		if t := p.TransitionByHandle(node.ID, node.DefaultBranch); t != nil {
			e.metrics.Inc(MetricDecisionDefaultTaken)
			return t.Target, nil
		}
	}

	return e.deadEnd(p, node)
}

func (e *Engine) route(p *plan.Plan, node *plan.CompiledNode, runtimeCtx map[string]any) (string, error) {
	value, found := condition.ResolveKey(node.SwitchKey, runtimeCtx)
	if found {
		for i := range node.Cases {
			c := &node.Cases[i]
			for _, candidate := range c.Values {
				if !condition.Equal(value, candidate) {
					continue
				}
				if t := p.TransitionByHandle(node.ID, c.ID); t != nil {
					return t.Target, nil
				}
				e.logger.Warn("switch case has no outgoing edge",
					"flowId", p.GraphID, "node", node.ID, "case", c.ID)
			}
		}
	}

	if node.DefaultCase != "" {
		if t := p.TransitionByHandle(node.ID, node.DefaultCase); t != nil {
			e.metrics.Inc(MetricSwitchDefaultTaken)
			return t.Target, nil
		}
	}

	return e.deadEnd(p, node)
}

// deadEnd handles a routing node that matched nothing and has no usable
// default. Strict mode fails the submit; otherwise the flow terminates
// gracefully at this node.
func (e *Engine) deadEnd(p *plan.Plan, node *plan.CompiledNode) (string, error) {
	e.metrics.Inc(MetricUnreachableTermination)
	if e.config.Flow.StrictUnreachableTermination {
		return "", fmt.Errorf("%w: node %s of flow %s", ErrUnreachableTermination, node.ID, p.GraphID)
	}
	e.logger.Warn("routing node terminated flow without a match",
		"flowId", p.GraphID, "node", node.ID)
	return "", nil
}

// buildRuntimeContext assembles the map condition expressions resolve keys
// against. Namespaces mirror top-level collected data entries; prevNode
// carries the answered node id merged with the raw submit response.
func buildRuntimeContext(session *actorstore.Session, collected map[string]any, answeredNodeID string, response map[string]any) map[string]any {
	runtimeCtx := map[string]any{
		"collectedData": collected,
		"tenant":        map[string]any{"id": session.TenantID},
		"client":        map[string]any{"id": session.ClientID},
	}

	for _, ns := range []string{"user", "device", "network", "risk", "variables"} {
		if v, ok := collected[ns]; ok {
			runtimeCtx[ns] = v
		} else {
			runtimeCtx[ns] = map[string]any{}
		}
	}

	prev := map[string]any{"nodeId": answeredNodeID}
	for k, v := range response {
		prev[k] = v
	}
	runtimeCtx["prevNode"] = prev

	return runtimeCtx
}
