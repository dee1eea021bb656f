package authrim

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"zero session ttl", func(c *Config) { c.Flow.SessionTTL = 0 }, "SessionTTL"},
		{"zero session age", func(c *Config) { c.Flow.MaxSessionAge = 0 }, "MaxSessionAge"},
		{"zero rate cap", func(c *Config) { c.Flow.RateLimitMaxRequests = 0 }, "rate limit"},
		{"revisits below two", func(c *Config) { c.Flow.MaxNodeRevisits = 1 }, "MaxNodeRevisits"},
		{"zero flow length", func(c *Config) { c.Flow.MaxVisitedNodes = 0 }, "MaxVisitedNodes"},
		{"zero eval depth", func(c *Config) { c.Evaluator.MaxDepth = 0 }, "MaxDepth"},
		{"bad signing method", func(c *Config) {
			c.Completion.Enabled = true
			c.Completion.Key = []byte("k")
			c.Completion.SigningMethod = "rs256"
		}, "SigningMethod"},
		{"missing completion key", func(c *Config) {
			c.Completion.Enabled = true
		}, "Key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestCloneConfigIsolatesMutableFields(t *testing.T) {
	cfg := defaultConfig()
	cfg.Completion.Key = []byte("secret")
	cfg.Registry.ProfileByFlowType = map[string]string{"login": "auth"}

	clone := cloneConfig(cfg)
	clone.Completion.Key[0] = 'X'
	clone.Registry.ProfileByFlowType["login"] = "changed"

	if cfg.Completion.Key[0] != 's' {
		t.Fatal("clone must not share the completion key")
	}
	if cfg.Registry.ProfileByFlowType["login"] != "auth" {
		t.Fatal("clone must not share the profile map")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Flow.SessionTTL = -time.Second

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected Build to reject invalid config")
	}
}
