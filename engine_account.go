package shadowid

import (
	"context"
	"errors"
	"fmt"

	"github.com/shadowid/shadowid/internal/metrics"
	"github.com/shadowid/shadowid/jwt"
)

// Register derives the anonymous identifier from the caller-supplied seed
// and creates the identity when it does not exist yet. Registration is
// idempotent: the same seed always resolves to the same identity.
func (e *Engine) Register(ctx context.Context, seed string) (Identity, error) {
	if e == nil {
		return Identity{}, ErrEngineNotReady
	}
	if seed == "" {
		return Identity{}, errors.New("empty seed")
	}

	identifier := DeriveIdentifier(seed)

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	existing, err := e.identities.FindByIdentifier(sctx, identifier)
	switch {
	case err == nil:
		return existing, nil
	case errors.Is(err, ErrIdentityNotFound):
	default:
		return Identity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	created, err := e.identities.Create(sctx, identifier)
	if err != nil {
		// A concurrent registration with the same seed may have won; that
		// still satisfies idempotency.
		if errors.Is(err, ErrIdentityExists) {
			return e.identities.FindByIdentifier(sctx, identifier)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metrics.Inc(metrics.MetricRegisterSuccess)
	e.emit(ctx, auditRegisterSuccess, identifier, true, nil)
	return created, nil
}

// Authenticate verifies a bearer access token and resolves the identity it
// names. Token failures are reported with their specific kind; an unknown
// subject maps to ErrTokenInvalid so a forged-but-well-signed token cannot
// probe for registered identifiers.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (Identity, error) {
	if e == nil {
		return Identity{}, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(accessToken)
	if err != nil {
		return Identity{}, mapTokenError(err)
	}
	if claims.Kind != jwt.KindAccess {
		return Identity{}, ErrTokenInvalid
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	identity, err := e.identities.FindByIdentifier(sctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return Identity{}, ErrTokenInvalid
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return identity, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenInvalid
	}
}
