package internaldefs

import (
	authrim "github.com/sgrastar/authrim-sub000"
)

// CounterDef maps one engine counter to its exported name and help text.
type CounterDef struct {
	ID   authrim.MetricID
	Name string
	Help string
}

// HistogramDef maps one engine histogram to its exported name and help text.
type HistogramDef struct {
	ID   authrim.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: authrim.MetricFlowInitialized, Name: "authrim_flow_initialized_total", Help: "Successfully initialized flow sessions."},
	{ID: authrim.MetricFlowInitFailure, Name: "authrim_flow_init_failure_total", Help: "Failed flow initializations."},
	{ID: authrim.MetricSubmitSuccess, Name: "authrim_submit_success_total", Help: "Capability submits that advanced or completed a flow."},
	{ID: authrim.MetricSubmitReplayed, Name: "authrim_submit_replayed_total", Help: "Capability submits answered from the idempotency cache."},
	{ID: authrim.MetricSubmitRateLimited, Name: "authrim_submit_rate_limited_total", Help: "Capability submits rejected by the per-session rate limit."},
	{ID: authrim.MetricSessionExpired, Name: "authrim_session_expired_total", Help: "Capability submits rejected past the session age ceiling."},
	{ID: authrim.MetricCycleBlocked, Name: "authrim_cycle_blocked_total", Help: "Transitions rejected by the node revisit cap."},
	{ID: authrim.MetricFlowTooLong, Name: "authrim_flow_too_long_total", Help: "Transitions rejected by the flow length cap."},
	{ID: authrim.MetricFlowCompleted, Name: "authrim_flow_completed_total", Help: "Flows that reached a terminal node."},
	{ID: authrim.MetricFlowCancelled, Name: "authrim_flow_cancelled_total", Help: "Explicitly cancelled flows."},
	{ID: authrim.MetricUnreachableTermination, Name: "authrim_unreachable_termination_total", Help: "Routing nodes that matched nothing and had no default."},
	{ID: authrim.MetricPlanCacheHit, Name: "authrim_plan_cache_hit_total", Help: "Plan lookups served from cache."},
	{ID: authrim.MetricPlanCacheMiss, Name: "authrim_plan_cache_miss_total", Help: "Plan lookups that triggered compilation."},
	{ID: authrim.MetricPlanCompileFailure, Name: "authrim_plan_compile_failure_total", Help: "Graph compilations that failed."},
	{ID: authrim.MetricDecisionDefaultTaken, Name: "authrim_decision_default_taken_total", Help: "Decision nodes routed through their default branch."},
	{ID: authrim.MetricSwitchDefaultTaken, Name: "authrim_switch_default_taken_total", Help: "Switch nodes routed through their default case."},
	{ID: authrim.MetricStateReads, Name: "authrim_state_reads_total", Help: "Flow state snapshot reads."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authrim.MetricSubmitLatency, Name: "authrim_submit_latency_seconds", Help: "End-to-end capability submit latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// engine's fixed bucket layout.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
