package authrim

import (
	"errors"
	"log/slog"
	"time"
)

// Config defines engine-wide tuning. Configure it during initialization and
// treat it as immutable afterwards; Build clones it.
type Config struct {
	Flow       FlowConfig
	Evaluator  EvaluatorConfig
	Registry   RegistryConfig
	Completion CompletionConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
FLOW EXECUTION CONFIG
====================================
*/

// FlowConfig holds the abuse and lifecycle limits applied to every session.
type FlowConfig struct {
	// SessionTTL is the store-side time-to-live passed to the actor store
	// on session creation.
	SessionTTL time.Duration
	// MaxSessionAge is the hard wall-clock ceiling on total flow duration,
	// enforced by the executor independent of the store TTL.
	MaxSessionAge time.Duration
	// RateLimitWindow and RateLimitMaxRequests bound the sliding window of
	// recent submits per session.
	RateLimitWindow      time.Duration
	RateLimitMaxRequests int
	// MaxNodeRevisits caps how often a single node may be occupied; the
	// cap-th visit is rejected as a circular reference.
	MaxNodeRevisits int
	// MaxVisitedNodes caps total flow length.
	MaxVisitedNodes int
	// StrictUnreachableTermination turns a decision/switch dead end (no
	// matching branch, no default) into a typed error instead of a
	// graceful redirect completion.
	StrictUnreachableTermination bool
}

// EvaluatorConfig tunes the condition evaluator.
type EvaluatorConfig struct {
	MaxDepth          int
	PatternTimeBudget time.Duration
}

// RegistryConfig tunes flow definition resolution.
type RegistryConfig struct {
	// LegacyKeyPrefix is the key namespace of the legacy per-tenant
	// override store: {prefix}:{tenantId}:{flowType}.
	LegacyKeyPrefix string
	// ProfileByFlowType derives the profile id used for override lookups.
	// Flow types without an entry use the flow type itself.
	ProfileByFlowType map[string]string
}

// CompletionConfig controls the signed handoff assertion minted when a flow
// completes. When disabled the redirect result carries no completion token.
type CompletionConfig struct {
	Enabled       bool
	SigningMethod string // "hs256" (default) or "ed25519"
	Key           []byte
	Issuer        string
	TTL           time.Duration
}

// AuditConfig controls dispatcher buffering behavior.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Flow: FlowConfig{
			SessionTTL:           30 * time.Minute,
			MaxSessionAge:        30 * time.Minute,
			RateLimitWindow:      60 * time.Second,
			RateLimitMaxRequests: 30,
			MaxNodeRevisits:      3,
			MaxVisitedNodes:      50,
		},
		Evaluator: EvaluatorConfig{
			MaxDepth:          10,
			PatternTimeBudget: 100 * time.Millisecond,
		},
		Registry: RegistryConfig{
			LegacyKeyPrefix: "flow",
		},
		Completion: CompletionConfig{
			SigningMethod: "hs256",
			TTL:           2 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate rejects configurations the executor cannot run safely with.
func (c *Config) Validate() error {
	if c.Flow.SessionTTL <= 0 {
		return errors.New("Flow.SessionTTL must be positive")
	}
	if c.Flow.MaxSessionAge <= 0 {
		return errors.New("Flow.MaxSessionAge must be positive")
	}
	if c.Flow.RateLimitWindow <= 0 || c.Flow.RateLimitMaxRequests <= 0 {
		return errors.New("Flow rate limit window and cap must be positive")
	}
	if c.Flow.MaxNodeRevisits < 2 {
		return errors.New("Flow.MaxNodeRevisits must be at least 2")
	}
	if c.Flow.MaxVisitedNodes <= 0 {
		return errors.New("Flow.MaxVisitedNodes must be positive")
	}
	if c.Evaluator.MaxDepth <= 0 {
		return errors.New("Evaluator.MaxDepth must be positive")
	}
	if c.Completion.Enabled {
		switch c.Completion.SigningMethod {
		case "hs256", "ed25519":
		default:
			return errors.New("Completion.SigningMethod must be hs256 or ed25519")
		}
		if len(c.Completion.Key) == 0 {
			return errors.New("Completion.Key required when completion tokens are enabled")
		}
		if c.Completion.TTL <= 0 {
			return errors.New("Completion.TTL must be positive")
		}
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Completion.Key = cloneBytes(cfg.Completion.Key)
	if cfg.Registry.ProfileByFlowType != nil {
		out.Registry.ProfileByFlowType = make(map[string]string, len(cfg.Registry.ProfileByFlowType))
		for k, v := range cfg.Registry.ProfileByFlowType {
			out.Registry.ProfileByFlowType[k] = v
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func defaultLogger() *slog.Logger {
	return slog.Default().With("component", "flowengine")
}
