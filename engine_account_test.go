package shadowid

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterDerivesStableIdentifier(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig(), newFakeProvider())

	first, err := engine.Register(context.Background(), "correct horse battery staple")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if first.AnonymousIdentifier != DeriveIdentifier("correct horse battery staple") {
		t.Fatal("identifier does not match the seed derivation")
	}
	if first.ID == "" {
		t.Fatal("expected a generated identity id")
	}
	if first.Role != RoleUser {
		t.Fatalf("expected default role %q, got %q", RoleUser, first.Role)
	}

	second, err := engine.Register(context.Background(), "correct horse battery staple")
	if err != nil {
		t.Fatalf("repeat Register failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("expected repeat registration to resolve to the same identity")
	}
}

func TestRegisterRejectsEmptySeed(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig(), newFakeProvider())

	if _, err := engine.Register(context.Background(), ""); err == nil {
		t.Fatal("expected empty seed to be rejected")
	}
}

func TestRegisterSurvivesCreateRace(t *testing.T) {
	provider := newFakeProvider()
	engine, _ := newTestEngine(t, engineTestConfig(), provider)

	identifier := DeriveIdentifier("seed")
	if _, err := provider.Create(context.Background(), identifier); err != nil {
		t.Fatalf("priming provider: %v", err)
	}

	// Simulate the identity appearing between the lookup and the create:
	// the first lookup misses, Create reports a duplicate, and the retry
	// lookup resolves it.
	provider.mu.Lock()
	provider.findMissOnce = true
	provider.mu.Unlock()

	got, err := engine.Register(context.Background(), "seed")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got.AnonymousIdentifier != identifier {
		t.Fatal("expected the existing identity back")
	}
}

func TestAuthenticateResolvesIdentity(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig(), newFakeProvider())

	identity, err := engine.Register(context.Background(), "seed")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	pair, err := engine.Login(context.Background(), identity.AnonymousIdentifier)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	got, err := engine.Authenticate(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != identity.ID {
		t.Fatal("authenticated identity does not match the registered one")
	}
}

func TestAuthenticateRejectsRefreshTokenAsAccess(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig(), newFakeProvider())

	identity, err := engine.Register(context.Background(), "seed")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	pair, err := engine.Login(context.Background(), identity.AnonymousIdentifier)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := engine.Authenticate(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for a refresh token, got %v", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig(), newFakeProvider())

	if _, err := engine.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	provider := newFakeProvider()
	engine, _ := newTestEngine(t, engineTestConfig(), provider)

	identity, err := engine.Register(context.Background(), "seed")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	pair, err := engine.Login(context.Background(), identity.AnonymousIdentifier)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	provider.mu.Lock()
	delete(provider.byAI, identity.AnonymousIdentifier)
	provider.mu.Unlock()

	if _, err := engine.Authenticate(context.Background(), pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for an unknown subject, got %v", err)
	}
}
