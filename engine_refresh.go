package shadowid

import (
	"context"
	"errors"
	"fmt"

	"github.com/shadowid/shadowid/internal/metrics"
	"github.com/shadowid/shadowid/internal/sessions"
	"github.com/shadowid/shadowid/jwt"
)

// Refresh rotates a refresh token: the presented token is atomically
// consumed and a new access+refresh pair is issued for the same subject.
//
// Two independent checks must both pass. The store lookup catches tokens
// that were never issued, expired by TTL, or already rotated; the signature
// check catches stale store entries holding an expired token and store
// corruption. Because the store claim is an atomic get+delete, redeeming a
// token both rotates it and revokes it: a captured token dies the moment
// its legitimate holder uses it, and a reused one misses the lookup.
//
// Every rejection maps to ErrInvalidRefreshToken so the caller cannot tell
// which check failed; the audit trail keeps the specific kind.
func (e *Engine) Refresh(ctx context.Context, presentedToken string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}
	if presentedToken == "" {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	sealed := e.box.Seal(presentedToken)

	subject, err := e.sessions.Claim(sctx, sealed)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			e.metrics.Inc(metrics.MetricRefreshFailure)
			e.emit(ctx, auditRefreshRejected, "", false, err)
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	claims, err := e.tokens.Verify(presentedToken)
	if err != nil || claims.Kind != jwt.KindRefresh || claims.Subject != subject {
		// The entry is already gone, so the disagreeing token is revoked
		// as a side effect of the claim.
		if err == nil {
			err = errors.New("token claims disagree with session store")
		}
		e.metrics.Inc(metrics.MetricRefreshFailure)
		e.emit(ctx, auditRefreshRejected, subject, false, err)
		return TokenPair{}, ErrInvalidRefreshToken
	}

	pair, err := e.issuePair(sctx, subject)
	if err != nil {
		return TokenPair{}, err
	}

	e.metrics.Inc(metrics.MetricRefreshSuccess)
	e.metrics.Inc(metrics.MetricSessionRotated)
	e.emit(ctx, auditRefreshSuccess, subject, true, nil)
	return pair, nil
}
