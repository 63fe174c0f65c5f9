package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the signature algorithm for both token kinds.
type SigningMethod string

const (
	// MethodHS256 signs with an HMAC-SHA256 shared secret.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an Ed25519 key pair.
	MethodEd25519 SigningMethod = "ed25519"
)

// Kind distinguishes the two token lifetimes.
type Kind string

const (
	// KindAccess is the short-lived, stateless API credential.
	KindAccess Kind = "access"
	// KindRefresh is the long-lived credential gated by the session store.
	KindRefresh Kind = "refresh"
)

var (
	// ErrExpired is returned when the token's exp has elapsed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned when the signature or claims do not verify.
	ErrInvalid = errors.New("token invalid")
	// ErrMalformed is returned when the token cannot be decoded at all.
	ErrMalformed = errors.New("token malformed")
)

// Config holds the issuer's immutable parameters.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	Secret        []byte // hs256
	PrivateKey    []byte // ed25519
	PublicKey     []byte // ed25519
	Issuer        string
}

// Claims is the verified claim set returned by [Manager.Verify].
type Claims struct {
	Subject string
	Kind    Kind
}

type tokenClaims struct {
	Typ string `json:"typ"`
	jwt.RegisteredClaims
}

// Manager issues and verifies signed tokens. It is safe for concurrent use.
type Manager struct {
	config Config

	// now is swapped in tests to simulate clock movement.
	now func() time.Time
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires a secret")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) != ed25519.PrivateKeySize {
			return nil, errors.New("invalid ed25519 private key")
		}
		if len(cfg.PublicKey) != 0 && len(cfg.PublicKey) != ed25519.PublicKeySize {
			return nil, errors.New("invalid ed25519 public key")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	return &Manager{config: cfg, now: time.Now}, nil
}

// Issue mints a signed token for the subject with the lifetime of kind.
func (m *Manager) Issue(subject string, kind Kind) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}

	var ttl time.Duration
	switch kind {
	case KindAccess:
		ttl = m.config.AccessTTL
	case KindRefresh:
		ttl = m.config.RefreshTTL
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	now := m.now()
	claims := tokenClaims{
		Typ: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
			// A unique jti keeps two tokens minted in the same second for
			// the same subject from colliding, which would let a rotated
			// refresh token alias its predecessor.
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(m.signingMethod(), claims)
	return token.SignedString(m.signKey())
}

// Verify checks the token's signature and expiry and returns its claims.
// It fails with ErrExpired, ErrInvalid, or ErrMalformed.
func (m *Manager) Verify(tokenStr string) (Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.signingMethod().Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.verifyKey(), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrInvalid
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalid
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalid
	}

	kind := Kind(claims.Typ)
	if kind != KindAccess && kind != KindRefresh {
		return Claims{}, ErrInvalid
	}

	return Claims{Subject: claims.Subject, Kind: kind}, nil
}

func (m *Manager) signingMethod() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (m *Manager) signKey() interface{} {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return ed25519.PrivateKey(m.config.PrivateKey)
	default:
		return m.config.Secret
	}
}

func (m *Manager) verifyKey() interface{} {
	switch m.config.SigningMethod {
	case MethodEd25519:
		if len(m.config.PublicKey) == ed25519.PublicKeySize {
			return ed25519.PublicKey(m.config.PublicKey)
		}
		return ed25519.PrivateKey(m.config.PrivateKey).Public()
	default:
		return m.config.Secret
	}
}
