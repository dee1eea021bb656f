package authrim

import (
	"fmt"
	"sync"

	"github.com/sgrastar/authrim-sub000/graph"
	"github.com/sgrastar/authrim-sub000/plan"
)

// planCache holds compiled plans keyed by graph id. A cached plan is reused
// only while its graph version matches; a version bump recompiles and
// replaces the entry, so editor saves take effect on the next request.
type planCache struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
}

func newPlanCache() *planCache {
	return &planCache{plans: make(map[string]*plan.Plan)}
}

func (c *planCache) resolve(def *graph.Definition, metrics *Metrics) (*plan.Plan, error) {
	c.mu.RLock()
	cached, ok := c.plans[def.ID]
	c.mu.RUnlock()

	if ok && cached.GraphVersion == def.FlowVersion {
		metrics.Inc(MetricPlanCacheHit)
		return cached, nil
	}

	metrics.Inc(MetricPlanCacheMiss)
	compiled, err := plan.Compile(def)
	if err != nil {
		metrics.Inc(MetricPlanCompileFailure)
		return nil, fmt.Errorf("compiling flow %q: %w", def.ID, err)
	}

	c.mu.Lock()
	// Recheck under the write lock; a racing compile of the same version
	// may have landed first and the two plans are equivalent.
	if current, ok := c.plans[def.ID]; ok && current.GraphVersion == def.FlowVersion {
		compiled = current
	} else {
		c.plans[def.ID] = compiled
	}
	c.mu.Unlock()

	return compiled, nil
}

// invalidate drops the cached plan for a graph id.
func (c *planCache) invalidate(graphID string) {
	c.mu.Lock()
	delete(c.plans, graphID)
	c.mu.Unlock()
}
