// Package identity provides IdentityProvider implementations for the
// identity store collaborator: a PostgreSQL-backed provider for production
// and an in-memory provider for tests and storeless development.
package identity
