package authrim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sgrastar/authrim-sub000/graph"
)

// legacyStore reads per-tenant flow definitions stored under the historical
// key layout {prefix}:{tenantId}:{flowType}. It is read-only; new
// deployments publish through a DefinitionProvider instead.
type legacyStore struct {
	client redis.UniversalClient
	prefix string
}

func newLegacyStore(client redis.UniversalClient, prefix string) *legacyStore {
	if client == nil {
		return nil
	}
	if prefix == "" {
		prefix = "flow"
	}
	return &legacyStore{client: client, prefix: prefix}
}

func (s *legacyStore) key(tenantID, flowType string) string {
	return s.prefix + ":" + tenantID + ":" + flowType
}

// Get returns the stored definition, or nil when the key does not exist.
func (s *legacyStore) Get(ctx context.Context, tenantID, flowType string) (*graph.Definition, error) {
	data, err := s.client.Get(ctx, s.key(tenantID, flowType)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrActorUnavailable, err)
	}

	var def graph.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: legacy definition for %s/%s: %v",
			ErrDefinitionInvalid, tenantID, flowType, err)
	}
	return &def, nil
}
