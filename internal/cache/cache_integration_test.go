package cache

import (
	"context"
	"testing"
	"time"

	"github.com/billax/billax/internal/testutil"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	return c
}

func TestBlacklistToken(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	jti := testutil.UniqueID("jti")

	revoked, err := c.IsTokenBlacklisted(ctx, jti)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if revoked {
		t.Error("fresh jti should not be blacklisted")
	}

	if err := c.BlacklistToken(ctx, jti, time.Minute); err != nil {
		t.Fatalf("blacklist: %v", err)
	}

	revoked, err = c.IsTokenBlacklisted(ctx, jti)
	if err != nil {
		t.Fatalf("check after blacklist: %v", err)
	}
	if !revoked {
		t.Error("jti should be blacklisted")
	}

	// Expired tokens need no entry
	if err := c.BlacklistToken(ctx, testutil.UniqueID("jti"), -time.Second); err != nil {
		t.Errorf("blacklisting expired token: %v", err)
	}

	// Empty jti is always treated as revoked
	revoked, err = c.IsTokenBlacklisted(ctx, "")
	if err != nil {
		t.Fatalf("check empty: %v", err)
	}
	if !revoked {
		t.Error("empty jti should be rejected")
	}
}

func TestLoginRateLimitBurst(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	ip := "203.0.113.7"
	const burst = 3

	for i := 0; i < burst; i++ {
		res, err := c.CheckLoginRateLimit(ctx, ip, 1, burst)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}

	res, err := c.CheckLoginRateLimit(ctx, ip, 1, burst)
	if err != nil {
		t.Fatalf("check over burst: %v", err)
	}
	if res.Allowed {
		t.Error("request over burst should be denied")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("retry after = %v, want > 0", res.RetryAfter)
	}

	// A different IP has its own bucket
	other, err := c.CheckLoginRateLimit(ctx, "198.51.100.9", 1, burst)
	if err != nil {
		t.Fatalf("check other ip: %v", err)
	}
	if !other.Allowed {
		t.Error("separate IP should not share the bucket")
	}
}

func TestFinancialContextRoundTrip(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	type snapshot struct {
		TotalBalance float64 `json:"total_balance"`
		AccountCount int     `json:"account_count"`
	}

	userID := testutil.UniqueID("user")
	want := snapshot{TotalBalance: 1234.56, AccountCount: 2}

	var got snapshot
	hit, err := c.GetFinancialContext(ctx, userID, "", &got)
	if err != nil {
		t.Fatalf("get before set: %v", err)
	}
	if hit {
		t.Error("expected miss before set")
	}

	if err := c.SetFinancialContext(ctx, userID, "", want); err != nil {
		t.Fatalf("set: %v", err)
	}

	hit, err = c.GetFinancialContext(ctx, userID, "", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after set")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// Per-account entries invalidate together with the user-level one
	if err := c.SetFinancialContext(ctx, userID, "acc-1", want); err != nil {
		t.Fatalf("set per-account: %v", err)
	}
	if err := c.InvalidateFinancialContext(ctx, userID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if hit, _ = c.GetFinancialContext(ctx, userID, "", &got); hit {
		t.Error("user-level entry should be gone after invalidation")
	}
	if hit, _ = c.GetFinancialContext(ctx, userID, "acc-1", &got); hit {
		t.Error("per-account entry should be gone after invalidation")
	}
}
