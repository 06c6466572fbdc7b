package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// financialContextPrefix is the Redis key prefix for the chat
	// financial-context cache.
	financialContextPrefix = "chat:context:"
	// FinancialContextTTL keeps the context fresh enough for a
	// conversation without re-reading accounts on every message.
	FinancialContextTTL = 2 * time.Minute
)

func financialContextKey(userID, accountID string) string {
	if accountID == "" {
		return financialContextPrefix + userID
	}
	return financialContextPrefix + userID + ":" + accountID
}

// GetFinancialContext retrieves a cached financial context snapshot.
// Returns false on a miss or corrupted entry; misses are not errors.
func (c *Cache) GetFinancialContext(ctx context.Context, userID, accountID string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, financialContextKey(userID, accountID)).Bytes()
	if err != nil {
		// Cache miss is not an error
		return false, nil //nolint:nilerr
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupted cache entry - treat as miss
		return false, nil //nolint:nilerr
	}
	return true, nil
}

// SetFinancialContext caches a financial context snapshot.
func (c *Cache) SetFinancialContext(ctx context.Context, userID, accountID string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal financial context: %w", err)
	}

	if err := c.client.Set(ctx, financialContextKey(userID, accountID), data, FinancialContextTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateFinancialContext drops cached context for a user, e.g. after an
// account or transaction sync.
func (c *Cache) InvalidateFinancialContext(ctx context.Context, userID string) error {
	iter := c.client.Scan(ctx, 0, financialContextPrefix+userID+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
