package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	shadowid "github.com/shadowid/shadowid"
)

var _ shadowid.IdentityProvider = (*Memory)(nil)

// Memory is a map-backed IdentityProvider. It exists for tests and for
// running the service without a database; identities do not survive a
// restart.
type Memory struct {
	mu   sync.RWMutex
	byID map[string]shadowid.Identity
	byAI map[string]string // anonymous identifier -> id
}

// NewMemory creates an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{
		byID: make(map[string]shadowid.Identity),
		byAI: make(map[string]string),
	}
}

// Create registers a new identity with the default role.
func (m *Memory) Create(_ context.Context, anonymousIdentifier string) (shadowid.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byAI[anonymousIdentifier]; ok {
		return shadowid.Identity{}, shadowid.ErrIdentityExists
	}

	id := shadowid.Identity{
		ID:                  uuid.NewString(),
		AnonymousIdentifier: anonymousIdentifier,
		Role:                shadowid.RoleUser,
		CreatedAt:           time.Now().UTC(),
	}
	m.byID[id.ID] = id
	m.byAI[anonymousIdentifier] = id.ID
	return id, nil
}

// FindByIdentifier looks up an identity by its anonymous identifier.
func (m *Memory) FindByIdentifier(_ context.Context, anonymousIdentifier string) (shadowid.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byAI[anonymousIdentifier]
	if !ok {
		return shadowid.Identity{}, shadowid.ErrIdentityNotFound
	}
	return m.byID[id], nil
}

// UpdateLastLogin stamps the last successful login time.
func (m *Memory) UpdateLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return shadowid.ErrIdentityNotFound
	}
	now := time.Now().UTC()
	rec.LastLogin = &now
	m.byID[id] = rec
	return nil
}
