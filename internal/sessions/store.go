// Package sessions is the adapter over the Redis key-value collaborator
// that maps a sealed refresh token to its owning subject.
//
// Exactly one entry exists per currently-valid refresh token; the entry's
// TTL equals the refresh lifetime and is enforced by Redis itself. Rotation
// safety hinges on [Store.Claim]: GETDEL is the single serialization point
// for concurrent refresh of the same token, so exactly one caller wins and
// every loser observes ErrNotFound.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no entry exists for the sealed token:
	// never issued, expired by TTL, or already rotated.
	ErrNotFound = errors.New("refresh session not found")
	// ErrUnavailable indicates the Redis backend is unreachable.
	ErrUnavailable = errors.New("session store unavailable")
)

// Store persists refresh sessions in Redis under a configurable prefix.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a Store backed by the given Redis client.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	return &Store{redis: redisClient, prefix: prefix}
}

// Put creates the entry for a newly issued refresh token.
func (s *Store) Put(ctx context.Context, sealedToken, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("non-positive session ttl")
	}
	if err := s.redis.Set(ctx, s.key(sealedToken), subject, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the subject owning the sealed token without consuming it.
func (s *Store) Get(ctx context.Context, sealedToken string) (string, error) {
	subject, err := s.redis.Get(ctx, s.key(sealedToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return subject, nil
}

// Claim atomically reads and deletes the entry. Concurrent claims of the
// same token resolve to exactly one winner; losers get ErrNotFound.
func (s *Store) Claim(ctx context.Context, sealedToken string) (string, error) {
	subject, err := s.redis.GetDel(ctx, s.key(sealedToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return subject, nil
}

// Delete revokes the entry. Deleting an absent entry is not an error.
func (s *Store) Delete(ctx context.Context, sealedToken string) error {
	if err := s.redis.Del(ctx, s.key(sealedToken)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) key(sealedToken string) string {
	return s.prefix + ":rt:" + sealedToken
}
