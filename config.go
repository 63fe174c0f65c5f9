package shadowid

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine. Instances are configured
// during initialization and treated as immutable afterwards.
type Config struct {
	JWT     JWTConfig
	Seal    SealConfig
	Guard   GuardConfig
	Session SessionConfig
	Audit   AuditConfig
	Metrics MetricsConfig

	// StoreTimeout bounds every Redis and identity-store call made by the
	// engine. A timed-out call surfaces as ErrStoreUnavailable, never as a
	// silent security bypass.
	StoreTimeout time.Duration
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the token issuer. The same secret and algorithm sign
// both token kinds; only the lifetime differs.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	Secret        []byte // hs256 signing secret
	PrivateKey    []byte // ed25519 private key
	PublicKey     []byte // ed25519 public key
}

/*
====================================
SEAL CONFIG
====================================
*/

// SealConfig configures at-rest encryption of refresh tokens. Key must be
// exactly 32 bytes of durable configuration. A fresh-per-start key would
// invalidate every outstanding session on restart, so the builder refuses
// to generate one.
type SealConfig struct {
	Key []byte
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig tunes the failed-login abuse guard.
type GuardConfig struct {
	// MaxAttempts is the number of failures within Window that triggers a
	// block.
	MaxAttempts int
	// Window is the TTL of the failed-attempt counter.
	Window time.Duration
	// BlockDuration is the base lockout; each subsequent block for the same
	// identifier doubles it.
	BlockDuration time.Duration
	// MaxBlockDuration caps the exponential backoff.
	MaxBlockDuration time.Duration
	// FailOpen degrades a guard-backend outage to "not rate limited".
	// The degradation is always logged and audited. Default is fail closed.
	FailOpen bool
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the Redis-backed refresh session store.
type SessionConfig struct {
	RedisPrefix string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration. Callers override what
// they need and pass the result to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     30 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Guard: GuardConfig{
			MaxAttempts:      5,
			Window:           15 * time.Minute,
			BlockDuration:    5 * time.Minute,
			MaxBlockDuration: 24 * time.Hour,
		},
		Session: SessionConfig{
			RedisPrefix: "sid",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics:      MetricsConfig{Enabled: true},
		StoreTimeout: 5 * time.Second,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	out.JWT.PrivateKey = append([]byte(nil), cfg.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), cfg.JWT.PublicKey...)
	out.Seal.Key = append([]byte(nil), cfg.Seal.Key...)
	return out
}

// Validate reports the first configuration error, or nil.
func (c *Config) Validate() error {
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	switch c.JWT.SigningMethod {
	case "hs256":
		if len(c.JWT.Secret) < 32 {
			return errors.New("hs256 requires a signing secret of at least 32 bytes")
		}
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 {
			return errors.New("ed25519 requires a private key")
		}
	default:
		return errors.New("unsupported signing method")
	}
	if len(c.Seal.Key) != 32 {
		return errors.New("seal key must be exactly 32 bytes")
	}
	if c.Guard.MaxAttempts <= 0 {
		return errors.New("guard MaxAttempts must be positive")
	}
	if c.Guard.Window <= 0 || c.Guard.BlockDuration <= 0 {
		return errors.New("guard window and block duration must be positive")
	}
	if c.Guard.MaxBlockDuration < c.Guard.BlockDuration {
		return errors.New("guard MaxBlockDuration must be at least BlockDuration")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix required")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("store timeout must be positive")
	}
	return nil
}
