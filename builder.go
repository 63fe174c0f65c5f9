package shadowid

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/shadowid/shadowid/internal/audit"
	"github.com/shadowid/shadowid/internal/guard"
	"github.com/shadowid/shadowid/internal/metrics"
	"github.com/shadowid/shadowid/internal/seal"
	"github.com/shadowid/shadowid/internal/sessions"
	"github.com/shadowid/shadowid/jwt"
)

// Builder assembles an [Engine] from explicitly injected dependencies.
// There is no lazily constructed global client anywhere: the Redis client
// and identity provider are owned by the caller and handed in once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identities IdentityProvider
	auditSink  AuditSink
	logger     *slog.Logger

	built bool
}

// New returns a Builder preloaded with defaults.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis injects the Redis client backing the session store and the
// abuse guard.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIdentityProvider injects the identity store collaborator.
func (b *Builder) WithIdentityProvider(p IdentityProvider) *Builder {
	b.identities = p
	return b
}

// WithAuditSink injects the destination for security events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger injects the structured logger used for degraded-mode and
// best-effort-path warnings.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.identities == nil {
		return nil, errors.New("identity provider required")
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cfg.JWT.Secret,
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
	})
	if err != nil {
		return nil, err
	}

	box, err := seal.New(cfg.Seal.Key)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:   cfg,
		tokens:   tokens,
		box:      box,
		sessions: sessions.NewStore(b.redis, cfg.Session.RedisPrefix),
		guard: guard.New(b.redis, guard.Config{
			MaxAttempts:      cfg.Guard.MaxAttempts,
			Window:           cfg.Guard.Window,
			BlockDuration:    cfg.Guard.BlockDuration,
			MaxBlockDuration: cfg.Guard.MaxBlockDuration,
		}),
		identities: b.identities,
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: metrics.New(cfg.Metrics.Enabled),
		logger:  logger,
	}

	b.built = true
	return engine, nil
}
