package authrim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sgrastar/authrim-sub000/graph"
)

// StoredDefinition is the envelope dynamic configuration stores a flow
// definition in. Inactive definitions are skipped during resolution.
type StoredDefinition struct {
	Definition json.RawMessage `json:"definition"`
	Active     bool            `json:"active"`
}

// DefinitionProvider serves flow definition overrides from dynamic
// configuration. A nil *StoredDefinition with a nil error means no override
// exists at that scope; resolution falls through to the next source.
type DefinitionProvider interface {
	// ClientDefinition looks up a client-specific override.
	ClientDefinition(ctx context.Context, tenantID, clientID, profileID string) (*StoredDefinition, error)
	// TenantDefinition looks up a tenant-wide override.
	TenantDefinition(ctx context.Context, tenantID, profileID string) (*StoredDefinition, error)
}

// Registry resolves the flow definition for a flow type. Resolution order:
// client-specific override, tenant-wide override, embedded built-in,
// legacy per-tenant store. The first active, structurally valid definition
// wins; invalid stored definitions are logged and skipped.
type Registry struct {
	cfg      RegistryConfig
	provider DefinitionProvider
	legacy   *legacyStore
	builtins map[string]*graph.Definition
	logger   *slog.Logger
}

func newRegistry(cfg RegistryConfig, provider DefinitionProvider, legacy *legacyStore, logger *slog.Logger) (*Registry, error) {
	builtins, err := loadBuiltins()
	if err != nil {
		return nil, fmt.Errorf("registry: loading built-in flows: %w", err)
	}
	return &Registry{
		cfg:      cfg,
		provider: provider,
		legacy:   legacy,
		builtins: builtins,
		logger:   logger,
	}, nil
}

// ProfileID derives the profile id used for override lookups.
func (r *Registry) ProfileID(flowType string) string {
	if p, ok := r.cfg.ProfileByFlowType[flowType]; ok {
		return p
	}
	return flowType
}

// Resolve returns the effective flow definition for a tenant, client, and
// flow type, or ErrFlowNotFound when every source comes up empty.
func (r *Registry) Resolve(ctx context.Context, tenantID, clientID, flowType string) (*graph.Definition, error) {
	profileID := r.ProfileID(flowType)

	if r.provider != nil {
		if clientID != "" {
			stored, err := r.provider.ClientDefinition(ctx, tenantID, clientID, profileID)
			if err != nil {
				return nil, fmt.Errorf("registry: client override lookup: %w", err)
			}
			if def := r.decodeStored(stored, "client", tenantID, profileID); def != nil {
				return def, nil
			}
		}

		stored, err := r.provider.TenantDefinition(ctx, tenantID, profileID)
		if err != nil {
			return nil, fmt.Errorf("registry: tenant override lookup: %w", err)
		}
		if def := r.decodeStored(stored, "tenant", tenantID, profileID); def != nil {
			return def, nil
		}
	}

	if def, ok := r.builtins[flowType]; ok {
		return def, nil
	}

	if r.legacy != nil {
		def, err := r.legacy.Get(ctx, tenantID, flowType)
		if err != nil {
			return nil, err
		}
		if def != nil {
			if err := def.Validate(); err != nil {
				r.logger.Warn("skipping invalid legacy flow definition",
					"tenantId", tenantID, "flowType", flowType, "error", err)
				return nil, ErrFlowNotFound
			}
			return def, nil
		}
	}

	return nil, ErrFlowNotFound
}

// decodeStored unwraps an override. Inactive, unparseable, or structurally
// invalid definitions resolve to nil so the next source is consulted.
func (r *Registry) decodeStored(stored *StoredDefinition, scope, tenantID, profileID string) *graph.Definition {
	if stored == nil || !stored.Active || len(stored.Definition) == 0 {
		return nil
	}

	var def graph.Definition
	if err := json.Unmarshal(stored.Definition, &def); err != nil {
		r.logger.Warn("skipping unparseable flow definition override",
			"scope", scope, "tenantId", tenantID, "profileId", profileID, "error", err)
		return nil
	}
	if err := def.Validate(); err != nil {
		r.logger.Warn("skipping invalid flow definition override",
			"scope", scope, "tenantId", tenantID, "profileId", profileID, "error", err)
		return nil
	}
	return &def
}
