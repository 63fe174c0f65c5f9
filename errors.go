package shadowid

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the anonymous
	// identifier is unknown. Callers should surface it with a generic
	// message; the guard has already recorded the failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned when the abuse guard has engaged for the
	// identifier. Maps to HTTP 429.
	ErrRateLimited = errors.New("too many login attempts")
	// ErrInvalidRefreshToken covers every refresh rejection: never issued,
	// expired by TTL, already rotated, revoked, undecryptable, or failing
	// its own signature check. The kinds are deliberately collapsed so the
	// response does not leak which check failed.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrTokenExpired is returned when an access token's exp has elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned when an access token's signature does not
	// verify or its subject is unknown.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenMalformed is returned when a presented token cannot be decoded
	// at all.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrStoreUnavailable indicates a transient backend failure. It is
	// recoverable per-request and never a security bypass.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDecryptionFailed indicates tampered or wrong-key ciphertext.
	// Reserved for callers that decrypt sealed values themselves; the
	// engine's refresh path only re-seals the presented token for lookup,
	// so every in-engine seal failure surfaces as ErrInvalidRefreshToken.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrIdentityNotFound is returned by IdentityProvider implementations
	// when no identity matches the anonymous identifier.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrIdentityExists is returned by IdentityProvider.Create on a
	// duplicate anonymous identifier.
	ErrIdentityExists = errors.New("identity already exists")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
