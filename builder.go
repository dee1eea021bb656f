package authrim

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sgrastar/authrim-sub000/actorstore"
	"github.com/sgrastar/authrim-sub000/condition"
	internalaudit "github.com/sgrastar/authrim-sub000/internal/audit"
)

// Builder assembles an Engine. Chain With methods and finish with Build;
// the zero Builder produced by New uses defaults for everything optional.
type Builder struct {
	cfg      Config
	cfgSet   bool
	redis    redis.UniversalClient
	provider DefinitionProvider
	actors   actorstore.Client
	sink     AuditSink
	issuer   CompletionIssuer
	logger   *slog.Logger
}

// New starts a Builder.
func New() *Builder {
	return &Builder{}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	b.cfgSet = true
	return b
}

// WithRedis supplies the Redis client used for the default actor store and
// the legacy definition store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDefinitionProvider supplies the dynamic-configuration source of flow
// definition overrides.
func (b *Builder) WithDefinitionProvider(provider DefinitionProvider) *Builder {
	b.provider = provider
	return b
}

// WithActorClient replaces the default Redis-backed actor store, typically
// with an RPC client in sharded deployments.
func (b *Builder) WithActorClient(client actorstore.Client) *Builder {
	b.actors = client
	return b
}

// WithAuditSink supplies the audit destination.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithCompletionIssuer replaces the built-in JWT completion issuer.
func (b *Builder) WithCompletionIssuer(issuer CompletionIssuer) *Builder {
	b.issuer = issuer
	return b
}

// WithLogger replaces the default logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration, wires every subsystem, and returns a
// ready Engine.
func (b *Builder) Build() (*Engine, error) {
	cfg := defaultConfig()
	if b.cfgSet {
		cfg = cloneConfig(b.cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := b.logger
	if logger == nil {
		logger = defaultLogger()
	}

	actors := b.actors
	if actors == nil {
		if b.redis == nil {
			return nil, errors.New("either an actor client or a redis client is required")
		}
		store, err := actorstore.NewStore("", b.redis)
		if err != nil {
			return nil, err
		}
		actors = store
	}

	registry, err := newRegistry(cfg.Registry, b.provider,
		newLegacyStore(b.redis, cfg.Registry.LegacyKeyPrefix), logger)
	if err != nil {
		return nil, err
	}

	issuer := b.issuer
	if issuer == nil && cfg.Completion.Enabled {
		issuer, err = newCompletionIssuer(cfg.Completion)
		if err != nil {
			return nil, err
		}
	}

	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.sink)

	return &Engine{
		config:   cfg,
		registry: registry,
		plans:    newPlanCache(),
		actors:   actors,
		audit:    dispatcher,
		metrics:  NewMetrics(cfg.Metrics),
		issuer:   issuer,
		evaluator: condition.NewEvaluator(condition.Config{
			MaxDepth:      cfg.Evaluator.MaxDepth,
			PatternBudget: cfg.Evaluator.PatternTimeBudget,
			Logger:        logger,
		}),
		logger: logger,
		now:    time.Now,
	}, nil
}
