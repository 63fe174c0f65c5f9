package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testConfig() Config {
	return Config{
		MaxAttempts:      3,
		Window:           15 * time.Minute,
		BlockDuration:    time.Minute,
		MaxBlockDuration: time.Hour,
	}
}

func newTestGuard(t *testing.T, cfg Config) (*Guard, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, cfg), mr
}

func TestCheckAllowsClearIdentifier(t *testing.T) {
	g, _ := newTestGuard(t, testConfig())

	if err := g.Check(context.Background(), "id-1"); err != nil {
		t.Fatalf("Check on clear identifier = %v, want nil", err)
	}
}

func TestBlocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGuard(t, testConfig())

	for i := 0; i < 2; i++ {
		if err := g.RecordFailure(ctx, "id-1"); err != nil {
			t.Fatalf("RecordFailure %d failed: %v", i, err)
		}
		if err := g.Check(ctx, "id-1"); err != nil {
			t.Fatalf("Check after %d failures = %v, want nil", i+1, err)
		}
	}

	// Third failure reaches the budget; the fourth attempt is rejected.
	if err := g.RecordFailure(ctx, "id-1"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if err := g.Check(ctx, "id-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Check after max failures = %v, want ErrRateLimited", err)
	}
}

func TestBlockedCheckDoesNotConsumeAttempts(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGuard(t, testConfig())

	for i := 0; i < 3; i++ {
		if err := g.RecordFailure(ctx, "id-1"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}

	before, err := mr.Get("fl:att:id-1")
	if err != nil {
		t.Fatalf("reading attempt counter failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := g.Check(ctx, "id-1"); !errors.Is(err, ErrRateLimited) {
			t.Fatalf("Check while blocked = %v, want ErrRateLimited", err)
		}
	}
	after, err := mr.Get("fl:att:id-1")
	if err != nil {
		t.Fatalf("reading attempt counter failed: %v", err)
	}
	if after != before {
		t.Fatalf("blocked checks changed attempt counter: %q -> %q", before, after)
	}
}

func TestSuccessClearsState(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGuard(t, testConfig())

	for i := 0; i < 3; i++ {
		if err := g.RecordFailure(ctx, "id-1"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if err := g.Check(ctx, "id-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Check = %v, want ErrRateLimited", err)
	}

	if err := g.RecordSuccess(ctx, "id-1"); err != nil {
		t.Fatalf("RecordSuccess failed: %v", err)
	}
	if err := g.Check(ctx, "id-1"); err != nil {
		t.Fatalf("Check after success = %v, want nil", err)
	}
}

func TestAttemptWindowExpires(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGuard(t, testConfig())

	for i := 0; i < 2; i++ {
		if err := g.RecordFailure(ctx, "id-1"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}

	mr.FastForward(16 * time.Minute)

	if err := g.Check(ctx, "id-1"); err != nil {
		t.Fatalf("Check after window elapsed = %v, want nil", err)
	}
}

func TestBackoffGrowsAcrossBlockEvents(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	g, mr := newTestGuard(t, cfg)

	triggerBlock := func() time.Duration {
		t.Helper()
		for i := 0; i < cfg.MaxAttempts; i++ {
			if err := g.RecordFailure(ctx, "id-1"); err != nil {
				t.Fatalf("RecordFailure failed: %v", err)
			}
		}
		until, err := g.BlockedUntil(ctx, "id-1")
		if err != nil {
			t.Fatalf("BlockedUntil failed: %v", err)
		}
		if until.IsZero() {
			t.Fatalf("expected a standing block")
		}
		return time.Until(until).Round(time.Minute)
	}

	prev := time.Duration(0)
	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute}
	for i, expected := range want {
		// Let the previous block and attempt window lapse, keeping the
		// block-event history alive (its TTL is MaxBlockDuration).
		mr.FastForward(20 * time.Minute)
		mr.Del("fl:att:id-1")

		backoff := triggerBlock()
		if backoff != expected {
			t.Fatalf("block %d backoff = %v, want %v", i+1, backoff, expected)
		}
		if backoff < prev {
			t.Fatalf("backoff decreased: %v after %v", backoff, prev)
		}
		prev = backoff
	}
}

func TestBackoffClampedToMax(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBlockDuration = 4 * time.Minute
	g, _ := newTestGuard(t, cfg)

	prev := time.Duration(0)
	for priorBlocks := int64(0); priorBlocks < 70; priorBlocks++ {
		backoff := g.backoff(priorBlocks)
		if backoff <= 0 || backoff > cfg.MaxBlockDuration {
			t.Fatalf("backoff(%d) = %v, outside (0, %v]", priorBlocks, backoff, cfg.MaxBlockDuration)
		}
		if backoff < prev {
			t.Fatalf("backoff(%d) = %v decreased from %v", priorBlocks, backoff, prev)
		}
		prev = backoff
	}
	if g.backoff(3) != cfg.MaxBlockDuration {
		t.Fatalf("backoff(3) = %v, want cap %v", g.backoff(3), cfg.MaxBlockDuration)
	}
}

func TestUnavailableBackend(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGuard(t, testConfig())
	mr.Close()

	if err := g.Check(ctx, "id-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Check = %v, want ErrUnavailable", err)
	}
	if err := g.RecordFailure(ctx, "id-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("RecordFailure = %v, want ErrUnavailable", err)
	}
	if err := g.RecordSuccess(ctx, "id-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("RecordSuccess = %v, want ErrUnavailable", err)
	}
}
