package shadowid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Role is the coarse authorization level stored on an identity.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "user"
	// RoleAdmin marks administrative identities.
	RoleAdmin Role = "admin"
)

// Identity is the pseudonymous account record owned by the identity store.
// AnonymousIdentifier is a deterministic one-way function of a
// caller-supplied seed; the seed itself is secret-equivalent and never
// persisted.
type Identity struct {
	ID                  string     `json:"id"`
	AnonymousIdentifier string     `json:"anonymous_identifier"`
	Role                Role       `json:"role"`
	CreatedAt           time.Time  `json:"created_at"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
}

// TokenPair is returned by [Engine.Login] and [Engine.Refresh].
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// IdentityProvider is the interface callers implement to integrate shadowid
// with their identity store. Implementations must be safe for concurrent
// use and honor context deadlines on every call.
//
// Create returns ErrIdentityExists on a duplicate identifier.
// FindByIdentifier returns ErrIdentityNotFound when no identity matches.
// UpdateLastLogin is best-effort from the engine's point of view; a failure
// is logged, never surfaced to the caller.
type IdentityProvider interface {
	Create(ctx context.Context, anonymousIdentifier string) (Identity, error)
	FindByIdentifier(ctx context.Context, anonymousIdentifier string) (Identity, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// DeriveIdentifier maps a caller-supplied seed to its stable anonymous
// identifier (SHA-256 hex). The same seed always yields the same
// identifier, so callers must treat the seed as a secret-equivalent value.
func DeriveIdentifier(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
