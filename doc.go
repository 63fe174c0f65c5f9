// Package shadowid issues and manages pseudonymous session credentials for
// users identified only by a derived anonymous identifier. No PII is ever
// stored or required.
//
// The package is the public surface of the credential lifecycle subsystem:
// JWT access tokens, rotating refresh tokens sealed before they touch Redis,
// and an exponential-backoff abuse guard against repeated failed logins.
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// shadowid exposes [Engine], [Builder], [Config], sentinel errors, and value
// types ([Identity], [TokenPair]). All internal coordination (session
// storage, sealing, abuse tracking, audit dispatch) lives under internal/
// and is never exported. The identity store is an external collaborator
// supplied through [IdentityProvider].
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or ciphertext formats in its
//     public API.
//   - Generate cryptographic key material at runtime: the signing secret and
//     the seal key are durable configuration, loaded once at startup.
//   - Hold global mutable state; every dependency is injected via [Builder].
package shadowid
