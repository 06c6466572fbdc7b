package cache

import (
	"context"
	"fmt"
	"time"
)

// blacklistPrefix is the Redis key prefix for revoked token jtis.
const blacklistPrefix = "auth:blacklist:"

// BlacklistToken marks a token jti as revoked until its natural expiry.
// The TTL bounds the key's lifetime so the blacklist cleans itself up.
func (c *Cache) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing to revoke.
		return nil
	}

	key := blacklistPrefix + jti
	if err := c.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// IsTokenBlacklisted reports whether a token jti has been revoked.
// Fails closed on Redis errors: a token that cannot be checked is rejected.
func (c *Cache) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return true, nil
	}

	n, err := c.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return true, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}
