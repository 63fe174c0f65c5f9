// Package httpapi is the HTTP layer over the credential engine.
//
// It owns routing, request decoding, and the mapping from engine sentinels
// to status codes. Credential decisions never happen here.
//
// # What this package must NOT do
//
//   - Touch Redis or the identity store directly.
//   - Leak error causes to callers. Responses carry a generic kind only.
package httpapi
