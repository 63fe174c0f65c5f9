// Package jwt mints and verifies the signed access and refresh tokens used
// by shadowid. Both kinds are signed with the same process-wide secret and
// algorithm; the only distinction is the embedded lifetime and the typ
// claim.
//
// The [Manager] is a pure function of its configured secret and the clock:
// it performs no I/O and keeps no state, so a token's validity can be
// checked independently of the session store.
package jwt
