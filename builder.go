package campusauth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/campusauth/internal/audit"
	"github.com/MrEthical07/campusauth/internal/flows"
	"github.com/MrEthical07/campusauth/internal/rate"
	"github.com/MrEthical07/campusauth/jwt"
	"github.com/MrEthical07/campusauth/password"
	"github.com/MrEthical07/campusauth/revocation"
	"github.com/MrEthical07/campusauth/scope"
	"github.com/MrEthical07/campusauth/store"
)

// Builder assembles an Engine. A Builder can be built once.
//
//	engine, err := campusauth.New().
//		WithConfig(cfg).
//		WithAccountStore(pg).
//		WithMembershipStore(pg).
//		WithAvatarStore(files.NewLocalStore(dir)).
//		Build()
type Builder struct {
	config Config
	redis  redis.UniversalClient

	accounts    store.AccountStore
	memberships scope.MembershipSource
	avatars     store.AvatarStore
	hasher      PasswordHasher

	logger    *slog.Logger
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client used by throttling and refresh rotation.
// It is required only when one of those features is enabled.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithAccountStore(s store.AccountStore) *Builder {
	b.accounts = s
	return b
}

func (b *Builder) WithMembershipStore(s scope.MembershipSource) *Builder {
	b.memberships = s
	return b
}

// WithAvatarStore enables avatar uploads during registration.
func (b *Builder) WithAvatarStore(s store.AvatarStore) *Builder {
	b.avatars = s
	return b
}

// WithPasswordHasher replaces the Argon2id hasher built from Config.Password.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides time.Now for token issuance and validation.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every component.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.accounts == nil {
		return nil, errors.New("account store required")
	}
	if b.memberships == nil {
		return nil, errors.New("membership store required")
	}
	if cfg.Security.needsRedis() && b.redis == nil {
		return nil, errors.New("throttling and refresh rotation require a redis client")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	hasher := b.hasher
	if hasher == nil {
		ph, err := password.NewArgon2(password.Config{
			Memory:           cfg.Password.Memory,
			Time:             cfg.Password.Time,
			Parallelism:      cfg.Password.Parallelism,
			SaltLength:       cfg.Password.SaltLength,
			KeyLength:        cfg.Password.KeyLength,
			MinPasswordBytes: cfg.Password.MinLength,
			MaxPasswordBytes: cfg.Password.MaxLength,
		})
		if err != nil {
			return nil, err
		}
		hasher = ph
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		RequireIAT:    true,
		KeyID:         cfg.JWT.KeyID,
		Cookie: jwt.CookieConfig{
			Name:     cfg.Cookie.Name,
			Path:     cfg.Cookie.Path,
			Domain:   cfg.Cookie.Domain,
			SameSite: cfg.Cookie.SameSite,
			Insecure: cfg.Cookie.Insecure,
		},
		Clock: clock,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cloneConfig(cfg),
		jwtManager: jm,
		resolver:   scope.NewResolver(b.memberships),
		accounts:   b.accounts,
		avatars:    b.avatars,
		hasher:     hasher,
		logger:     logger.With(slog.String("component", "campusauth")),
		now:        clock,
		metrics:    NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	if cfg.Security.EnableLoginThrottle || cfg.Security.EnableRefreshThrottle {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			Prefix:                  cfg.Security.RedisPrefix,
			EnableLoginThrottle:     cfg.Security.EnableLoginThrottle,
			MaxLoginAttempts:        cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration:   cfg.Security.LoginCooldownDuration,
			EnableRefreshThrottle:   cfg.Security.EnableRefreshThrottle,
			MaxRefreshAttempts:      cfg.Security.MaxRefreshAttempts,
			RefreshCooldownDuration: cfg.Security.RefreshCooldownDuration,
		})
	}
	if cfg.Security.EnforceRefreshRotation {
		engine.revocations = revocation.NewStore(b.redis, cfg.Security.RedisPrefix, cfg.JWT.RefreshTTL)
	}

	engine.flows = engine.buildFlowDeps()

	b.built = true

	return engine, nil
}

func (e *Engine) buildFlowDeps() flows.Deps {
	deps := flows.Deps{
		Register: flows.RegisterDeps{
			Accounts:          e.accounts,
			Avatars:           e.avatars,
			Hasher:            e.hasher,
			Tokens:            e.jwtManager,
			MinPasswordLength: e.config.Password.MinLength,
			MaxPasswordLength: e.config.Password.MaxLength,
			AvatarFatal:       e.config.Avatar.FailurePolicy == AvatarFailRegistration,
		},
		Login: flows.LoginDeps{
			Accounts: e.accounts,
			Hasher:   e.hasher,
			Resolver: e.resolver,
			Tokens:   e.jwtManager,
			Warn:     e.logger.Warn,
		},
		Refresh: flows.RefreshDeps{
			Parser:   e.jwtManager,
			Tokens:   e.jwtManager,
			Resolver: e.resolver,
		},
		Validate: flows.ValidateDeps{
			Parser: e.jwtManager,
		},
	}
	if e.rateLimiter != nil {
		deps.Login.Limiter = e.rateLimiter
		deps.Refresh.Limiter = e.rateLimiter
	}
	if e.revocations != nil {
		deps.Refresh.Revocation = e.revocations
	}
	return deps
}
