// repository/balance_cache.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"walletflow-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const balanceKeyPrefix = "walletflow:balance:"

// BalanceCache mirrors the authoritative balance per session in redis.
// The only write is a single SET of the whole snapshot; there is no
// increment or merge operation.
type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBalanceCache(rdb *redis.Client, ttl time.Duration) *BalanceCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &BalanceCache{rdb: rdb, ttl: ttl}
}

func (c *BalanceCache) Replace(ctx context.Context, userID string, bal *domain.Balance) error {
	raw, err := json.Marshal(bal)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, balanceKeyPrefix+userID, raw, c.ttl).Err()
}

func (c *BalanceCache) Get(ctx context.Context, userID string) (*domain.Balance, error) {
	raw, err := c.rdb.Get(ctx, balanceKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var bal domain.Balance
	if err := json.Unmarshal(raw, &bal); err != nil {
		return nil, err
	}
	return &bal, nil
}
