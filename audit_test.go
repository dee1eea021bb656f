package authrim

import (
	"context"
	"testing"
	"time"
)

func collectAuditEvents(t *testing.T, sink *ChannelSink, want int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, want)
	timeout := time.After(2 * time.Second)
	for len(events) < want {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for audit events, have %d of %d", len(events), want)
		}
	}
	return events
}

func TestEngineEmitsLifecycleAuditEvents(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	provider := &staticProvider{tenant: map[string]*StoredDefinition{
		"test": storedDef(t, decisionTestDefinition()),
	}}
	sink := NewChannelSink(64)

	engine, err := New().
		WithRedis(rdb).
		WithDefinitionProvider(provider).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	res, err := engine.InitFlow(ctx, InitFlowRequest{FlowType: "test", TenantID: "acme", ClientID: "web"})
	if err != nil {
		t.Fatalf("InitFlow failed: %v", err)
	}

	if _, err := engine.SubmitCapability(ctx, SubmitRequest{
		SessionID:    res.SessionID,
		RequestID:    "r1",
		CapabilityID: "login_form_password",
		Response:     map[string]any{"success": true},
	}); err != nil {
		t.Fatalf("SubmitCapability failed: %v", err)
	}

	events := collectAuditEvents(t, sink, 2)

	if events[0].EventType != AuditFlowInitialized {
		t.Fatalf("expected %s first, got %s", AuditFlowInitialized, events[0].EventType)
	}
	if events[0].SessionID != res.SessionID || events[0].TenantID != "acme" {
		t.Fatalf("init event missing identifiers: %+v", events[0])
	}

	if events[1].EventType != AuditFlowCompleted {
		t.Fatalf("expected %s second, got %s", AuditFlowCompleted, events[1].EventType)
	}
	if events[1].NodeID != "end_success" {
		t.Fatalf("completion event should carry the terminal node, got %s", events[1].NodeID)
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := defaultConfig()
	cfg.Audit.Enabled = false

	provider := &staticProvider{tenant: map[string]*StoredDefinition{
		"test": storedDef(t, stepTestDefinition()),
	}}
	sink := NewChannelSink(8)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDefinitionProvider(provider).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ctx := context.Background()
	if _, err := engine.InitFlow(ctx, InitFlowRequest{FlowType: "test", TenantID: "acme"}); err != nil {
		t.Fatalf("InitFlow failed: %v", err)
	}
	engine.Close()

	select {
	case ev := <-sink.Events():
		t.Fatalf("expected no audit events, got %s", ev.EventType)
	default:
	}
}
