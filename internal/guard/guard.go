// Package guard tracks failed-login state per anonymous identifier and
// applies exponentially growing lockouts.
//
// Each identifier moves through CLEAR -> WARNING (attempts > 0) -> BLOCKED.
// The state lives in three Redis keys: a failed-attempt counter whose TTL is
// the rate-limit window, a block deadline whose TTL is the backoff itself,
// and a block-event counter that drives the exponent. All writes use the
// store's atomic INCR/EXPIRE primitives so concurrent logins for the same
// identifier cannot corrupt the counters.
//
// The guard is best-effort by contract: it reports backend outages as
// ErrUnavailable and leaves the fail-open/fail-closed decision to the
// caller, which must log the degraded mode.
package guard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned by Check while the identifier is blocked
	// or over its attempt budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnavailable indicates the guard backend is unreachable.
	ErrUnavailable = errors.New("guard backend unavailable")
)

// Config tunes the guard's window and backoff behavior.
type Config struct {
	// MaxAttempts within Window triggers a block.
	MaxAttempts int
	// Window is the TTL of the attempt counter.
	Window time.Duration
	// BlockDuration is the base lockout, doubled per prior block event.
	BlockDuration time.Duration
	// MaxBlockDuration caps the backoff growth.
	MaxBlockDuration time.Duration
}

// Guard enforces the failed-login state machine over Redis.
type Guard struct {
	redis  redis.UniversalClient
	config Config

	// now is swapped in tests to simulate clock movement.
	now func() time.Time
}

// New creates a Guard backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Guard {
	return &Guard{redis: redisClient, config: cfg, now: time.Now}
}

// Check reports whether the identifier may attempt a login. A standing
// block never consumes an attempt. When the attempt counter has already
// reached the budget inside the window but no block is recorded, Check
// transitions the identifier to BLOCKED itself before rejecting.
func (g *Guard) Check(ctx context.Context, identifier string) error {
	deadline, err := g.redis.Get(ctx, g.blockKey(identifier)).Int64()
	switch {
	case err == nil:
		if g.now().Unix() < deadline {
			return ErrRateLimited
		}
		// Deadline passed but the key has not expired yet; fall through to
		// the attempt counter.
	case errors.Is(err, redis.Nil):
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	attempts, err := g.redis.Get(ctx, g.attemptsKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if attempts >= int64(g.config.MaxAttempts) {
		if err := g.block(ctx, identifier); err != nil {
			return err
		}
		return ErrRateLimited
	}
	return nil
}

// RecordFailure increments the attempt counter and re-arms its window TTL.
// Reaching the budget transitions the identifier to BLOCKED with a backoff
// derived from its block history.
func (g *Guard) RecordFailure(ctx context.Context, identifier string) error {
	key := g.attemptsKey(identifier)

	count, err := g.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := g.redis.Expire(ctx, key, g.config.Window).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count >= int64(g.config.MaxAttempts) {
		return g.block(ctx, identifier)
	}
	return nil
}

// RecordSuccess returns the identifier to CLEAR: the attempt counter and
// any standing block are dropped. The block-event history is kept so that
// an abuser alternating failures with an occasional success still faces
// growing lockouts; it decays on its own TTL.
func (g *Guard) RecordSuccess(ctx context.Context, identifier string) error {
	keys := []string{g.attemptsKey(identifier), g.blockKey(identifier)}
	if err := g.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// BlockedUntil returns the current block deadline, or the zero time when
// the identifier is not blocked.
func (g *Guard) BlockedUntil(ctx context.Context, identifier string) (time.Time, error) {
	deadline, err := g.redis.Get(ctx, g.blockKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Unix(deadline, 0), nil
}

// block records a block event and arms the block deadline. The backoff is
// BlockDuration doubled once per prior block event, clamped to
// MaxBlockDuration.
func (g *Guard) block(ctx context.Context, identifier string) error {
	events, err := g.redis.Incr(ctx, g.eventsKey(identifier)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := g.redis.Expire(ctx, g.eventsKey(identifier), g.config.MaxBlockDuration).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	backoff := g.backoff(events - 1)
	deadline := g.now().Add(backoff).Unix()

	value := strconv.FormatInt(deadline, 10)
	if err := g.redis.Set(ctx, g.blockKey(identifier), value, backoff).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// backoff computes BlockDuration * 2^priorBlocks with overflow protection.
func (g *Guard) backoff(priorBlocks int64) time.Duration {
	if priorBlocks < 0 {
		priorBlocks = 0
	}
	// 2^63 overflows long before any sane MaxBlockDuration.
	if priorBlocks > 40 {
		return g.config.MaxBlockDuration
	}
	backoff := g.config.BlockDuration << uint(priorBlocks)
	if backoff <= 0 || backoff > g.config.MaxBlockDuration {
		return g.config.MaxBlockDuration
	}
	return backoff
}

func (g *Guard) attemptsKey(identifier string) string {
	return "fl:att:" + identifier
}

func (g *Guard) blockKey(identifier string) string {
	return "fl:blk:" + identifier
}

func (g *Guard) eventsKey(identifier string) string {
	return "fl:cnt:" + identifier
}
