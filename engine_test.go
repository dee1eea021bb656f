package authrim

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sgrastar/authrim-sub000/condition"
	"github.com/sgrastar/authrim-sub000/graph"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type staticProvider struct {
	client map[string]*StoredDefinition
	tenant map[string]*StoredDefinition
}

func (p *staticProvider) ClientDefinition(_ context.Context, _, clientID, profileID string) (*StoredDefinition, error) {
	if p.client == nil {
		return nil, nil
	}
	return p.client[clientID+"/"+profileID], nil
}

func (p *staticProvider) TenantDefinition(_ context.Context, _, profileID string) (*StoredDefinition, error) {
	if p.tenant == nil {
		return nil, nil
	}
	return p.tenant[profileID], nil
}

func storedDef(t *testing.T, def *graph.Definition) *StoredDefinition {
	t.Helper()

	raw, err := json.Marshal(def)
	if err != nil {
		t.Fatalf("marshal definition: %v", err)
	}
	return &StoredDefinition{Definition: raw, Active: true}
}

// buildTestEngine wires an engine over miniredis with the given flow
// definitions installed as tenant overrides, and a controllable clock.
func buildTestEngine(t *testing.T, cfg Config, defs map[string]*graph.Definition) (*Engine, *fakeClock, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	provider := &staticProvider{tenant: map[string]*StoredDefinition{}}
	for flowType, def := range defs {
		provider.tenant[flowType] = storedDef(t, def)
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDefinitionProvider(provider).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	clock := newFakeClock()
	engine.now = clock.Now

	return engine, clock, func() {
		engine.Close()
		mr.Close()
	}
}

func intPtr(v int) *int { return &v }

func exprPtr(e condition.Expression) *condition.Expression { return &e }

// decisionTestDefinition routes on the submitted success flag: true reaches
// end_success, anything else lands on the error node.
func decisionTestDefinition() *graph.Definition {
	return &graph.Definition{
		ID:          "test_decision_flow",
		FlowVersion: "1",
		Name:        "Decision routing",
		Nodes: []graph.Node{
			{ID: "start", Type: graph.NodeStart},
			{ID: "login_form", Type: graph.NodeLogin, Capabilities: []graph.CapabilityTemplate{
				{Type: "password", Required: true},
			}},
			{ID: "decide", Type: graph.NodeDecision, Config: graph.NodeConfig{
				Branches: []graph.Branch{
					{ID: "ok", Priority: intPtr(1), Condition: exprPtr(
						condition.Leaf("prevNode.success", condition.OpIsTrue, nil))},
				},
				DefaultBranch: "fail",
			}},
			{ID: "end_success", Type: graph.NodeEnd},
			{ID: "end_error", Type: graph.NodeError},
		},
		Edges: []graph.Edge{
			{Source: "start", Target: "login_form", Type: graph.EdgeSuccess},
			{Source: "login_form", Target: "decide", Type: graph.EdgeSuccess},
			{Source: "decide", Target: "end_success", Type: graph.EdgeConditional, SourceHandle: "ok"},
			{Source: "decide", Target: "end_error", Type: graph.EdgeConditional, SourceHandle: "fail"},
		},
	}
}

func TestInitFlowRendersFirstInteractiveNode(t *testing.T) {
	engine, _, cleanup := buildTestEngine(t, defaultConfig(), nil)
	defer cleanup()

	res, err := engine.InitFlow(context.Background(), InitFlowRequest{
		FlowType: "login",
		TenantID: "acme",
	})
	if err != nil {
		t.Fatalf("InitFlow failed: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if res.UIContract == nil {
		t.Fatal("expected a UI contract")
	}
	if res.UIContract.Node.ID != "login_form" {
		t.Fatalf("expected first node login_form, got %s", res.UIContract.Node.ID)
	}
	if res.UIContract.UIContractVersion != UIContractVersion {
		t.Fatalf("unexpected contract version %s", res.UIContract.UIContractVersion)
	}
	if len(res.UIContract.Node.Capabilities) != 2 {
		t.Fatalf("expected 2 capabilities, got %d", len(res.UIContract.Node.Capabilities))
	}
}

func TestInitFlowUnknownTypeFails(t *testing.T) {
	engine, _, cleanup := buildTestEngine(t, defaultConfig(), nil)
	defer cleanup()

	_, err := engine.InitFlow(context.Background(), InitFlowRequest{FlowType: "no-such-flow"})
	if !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound, got %v", err)
	}
	if got := ErrorCode(err); got != "flow_not_found" {
		t.Fatalf("expected code flow_not_found, got %s", got)
	}
}

func TestGetFlowStateReturnsContract(t *testing.T) {
	engine, _, cleanup := buildTestEngine(t, defaultConfig(), nil)
	defer cleanup()

	ctx := context.Background()
	res, err := engine.InitFlow(ctx, InitFlowRequest{FlowType: "login", TenantID: "acme"})
	if err != nil {
		t.Fatalf("InitFlow failed: %v", err)
	}

	state, err := engine.GetFlowState(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("GetFlowState failed: %v", err)
	}
	if state.CurrentNodeID != "login_form" {
		t.Fatalf("expected current node login_form, got %s", state.CurrentNodeID)
	}
	if state.Completed {
		t.Fatal("fresh session should not be completed")
	}
	if state.UIContract == nil || state.UIContract.Node.ID != "login_form" {
		t.Fatal("expected contract for the current node")
	}
}

func TestCancelFlowIsIdempotent(t *testing.T) {
	engine, _, cleanup := buildTestEngine(t, defaultConfig(), nil)
	defer cleanup()

	ctx := context.Background()
	res, err := engine.InitFlow(ctx, InitFlowRequest{FlowType: "login", TenantID: "acme"})
	if err != nil {
		t.Fatalf("InitFlow failed: %v", err)
	}

	if err := engine.CancelFlow(ctx, res.SessionID); err != nil {
		t.Fatalf("CancelFlow failed: %v", err)
	}
	if _, err := engine.GetFlowState(ctx, res.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after cancel, got %v", err)
	}
	if err := engine.CancelFlow(ctx, res.SessionID); err != nil {
		t.Fatalf("second CancelFlow should succeed, got %v", err)
	}
}

func TestRegistryResolutionOrder(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	clientDef := decisionTestDefinition()
	clientDef.ID = "client_scoped"
	tenantDef := decisionTestDefinition()
	tenantDef.ID = "tenant_scoped"

	provider := &staticProvider{
		client: map[string]*StoredDefinition{"web/login": storedDef(t, clientDef)},
		tenant: map[string]*StoredDefinition{"login": storedDef(t, tenantDef)},
	}

	engine, err := New().WithRedis(rdb).WithDefinitionProvider(provider).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()

	def, err := engine.registry.Resolve(ctx, "acme", "web", "login")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if def.ID != "client_scoped" {
		t.Fatalf("expected client override to win, got %s", def.ID)
	}

	def, err = engine.registry.Resolve(ctx, "acme", "other-client", "login")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if def.ID != "tenant_scoped" {
		t.Fatalf("expected tenant override, got %s", def.ID)
	}

	def, err = engine.registry.Resolve(ctx, "acme", "other-client", "registration")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if def.ID != "builtin_registration" {
		t.Fatalf("expected builtin, got %s", def.ID)
	}

	// Legacy keys back flow types nothing else knows about.
	legacyDef := decisionTestDefinition()
	legacyDef.ID = "legacy_scoped"
	raw, err := json.Marshal(legacyDef)
	if err != nil {
		t.Fatalf("marshal legacy definition: %v", err)
	}
	if err := rdb.Set(ctx, "flow:acme:recovery", raw, 0).Err(); err != nil {
		t.Fatalf("seed legacy key: %v", err)
	}

	def, err = engine.registry.Resolve(ctx, "acme", "other-client", "recovery")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if def.ID != "legacy_scoped" {
		t.Fatalf("expected legacy definition, got %s", def.ID)
	}

	if _, err := engine.registry.Resolve(ctx, "acme", "other-client", "unknown"); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound, got %v", err)
	}
}

func TestInactiveOverrideFallsThrough(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	tenantDef := decisionTestDefinition()
	tenantDef.ID = "tenant_scoped"
	stored := storedDef(t, tenantDef)
	stored.Active = false

	provider := &staticProvider{tenant: map[string]*StoredDefinition{"login": stored}}

	engine, err := New().WithRedis(rdb).WithDefinitionProvider(provider).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	def, err := engine.registry.Resolve(context.Background(), "acme", "", "login")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if def.ID != "builtin_login" {
		t.Fatalf("inactive override should fall through to builtin, got %s", def.ID)
	}
}
