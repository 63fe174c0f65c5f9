package shadowid

import (
	"context"
	"errors"
	"fmt"

	"github.com/shadowid/shadowid/internal/guard"
	"github.com/shadowid/shadowid/internal/metrics"
	"github.com/shadowid/shadowid/jwt"
)

// Login authenticates an anonymous identifier and issues a token pair.
//
// The abuse guard is consulted before the identity store is touched, so a
// blocked identifier cannot probe for registered seeds. A guard-backend
// outage fails closed unless Guard.FailOpen is set; the degradation is
// never silent.
func (e *Engine) Login(ctx context.Context, identifier string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}
	if identifier == "" {
		return TokenPair{}, ErrInvalidCredentials
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	switch err := e.guard.Check(sctx, identifier); {
	case err == nil:
	case errors.Is(err, guard.ErrRateLimited):
		e.metrics.Inc(metrics.MetricLoginRateLimited)
		e.emit(ctx, auditLoginRateLimited, identifier, false, err)
		return TokenPair{}, ErrRateLimited
	case errors.Is(err, guard.ErrUnavailable):
		if !e.config.Guard.FailOpen {
			e.logger.Error("abuse guard unavailable, failing closed", "identifier", identifier, "err", err)
			return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		e.metrics.Inc(metrics.MetricGuardDegraded)
		e.emit(ctx, auditGuardDegraded, identifier, false, err)
		e.logger.Warn("abuse guard unavailable, degrading to unguarded login", "identifier", identifier, "err", err)
	default:
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	identity, err := e.identities.FindByIdentifier(sctx, identifier)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// Count the probe even though the identifier is unknown; the
			// guard keys on the identifier itself.
			if gerr := e.guard.RecordFailure(sctx, identifier); gerr != nil {
				e.logger.Warn("recording login failure degraded", "identifier", identifier, "err", gerr)
			}
			e.metrics.Inc(metrics.MetricLoginFailure)
			e.emit(ctx, auditLoginFailure, identifier, false, err)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := e.guard.RecordSuccess(sctx, identifier); err != nil {
		e.logger.Warn("clearing guard state degraded", "identifier", identifier, "err", err)
	}
	if err := e.identities.UpdateLastLogin(sctx, identity.ID); err != nil {
		e.logger.Warn("updating last login failed", "identifier", identifier, "err", err)
	}

	pair, err := e.issuePair(sctx, identity.AnonymousIdentifier)
	if err != nil {
		return TokenPair{}, err
	}

	e.metrics.Inc(metrics.MetricLoginSuccess)
	e.metrics.Inc(metrics.MetricSessionCreated)
	e.emit(ctx, auditLoginSuccess, identifier, true, nil)
	return pair, nil
}

// issuePair mints an access+refresh pair for the subject and persists the
// sealed refresh token with the refresh lifetime.
func (e *Engine) issuePair(ctx context.Context, subject string) (TokenPair, error) {
	access, err := e.tokens.Issue(subject, jwt.KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.tokens.Issue(subject, jwt.KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	sealed := e.box.Seal(refresh)
	if err := e.sessions.Put(ctx, sealed, subject, e.config.JWT.RefreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
