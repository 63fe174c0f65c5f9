// Package seal provides the secret box used to encrypt refresh tokens
// before they become session store keys, so a store compromise does not
// hand over usable refresh tokens.
//
// Sealing is deterministic: the XChaCha20-Poly1305 nonce is synthesized as
// HMAC-SHA256(nonce key, plaintext), the SIV construction. Equal plaintexts
// seal to equal ciphertexts, which is what lets the refresh path look up a
// presented token by sealing it again. The key is durable configuration;
// generating one per process start would strand every outstanding session
// on restart.
package seal

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrKeySize is returned by New for keys that are not 32 bytes.
	ErrKeySize = errors.New("seal key must be 32 bytes")
	// ErrDecryptionFailed is returned by Open for tampered, truncated, or
	// wrong-key ciphertext.
	ErrDecryptionFailed = errors.New("decryption failed")
)

const nonceLabel = "shadowid/seal/nonce/v1"

// Box performs authenticated symmetric encryption with a fixed key.
// It is safe for concurrent use.
type Box struct {
	aead     cipher.AEAD
	nonceKey []byte
}

// New builds a Box from a 32-byte key. The nonce-derivation subkey is
// separated from the cipher key by an HMAC with a fixed label.
func New(key []byte) (*Box, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrKeySize
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(nonceLabel))

	return &Box{aead: aead, nonceKey: mac.Sum(nil)}, nil
}

// Seal encrypts plaintext and returns a URL-safe string. The output is
// stable for a given key and plaintext.
func (b *Box) Seal(plaintext string) string {
	nonce := b.nonce([]byte(plaintext))
	out := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(out)
}

// Open decrypts a value produced by Seal. Any failure is reported as
// ErrDecryptionFailed; callers must not distinguish tamper from wrong key.
func (b *Box) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(raw) < b.aead.NonceSize() {
		return "", ErrDecryptionFailed
	}

	nonce, ciphertext := raw[:b.aead.NonceSize()], raw[b.aead.NonceSize():]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

func (b *Box) nonce(plaintext []byte) []byte {
	mac := hmac.New(sha256.New, b.nonceKey)
	mac.Write(plaintext)
	return mac.Sum(nil)[:b.aead.NonceSize()]
}
