package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateCache implements ports.RateCache using Redis. The fresh entry
// carries a TTL enforced by Redis; the last-good entry never expires and
// serves as the fallback when the upstream rate source is down. Rates
// are stored as decimal strings so no precision is lost in transit.
type RateCache struct {
	client *goredis.Client
	prefix string
}

// NewRateCache creates a new Redis-backed exchange-rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "rate:",
	}
}

// GetFresh retrieves the unexpired rate. The second return is false when
// the entry is absent or expired.
func (c *RateCache) GetFresh(ctx context.Context) (decimal.Decimal, bool, error) {
	return c.get(ctx, c.prefix+"fresh")
}

// SetFresh stores the rate with a TTL.
func (c *RateCache) SetFresh(ctx context.Context, rate decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+"fresh", rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis rate set fresh: %w", err)
	}
	return nil
}

// GetLastGood retrieves the most recent successfully fetched rate.
func (c *RateCache) GetLastGood(ctx context.Context) (decimal.Decimal, bool, error) {
	return c.get(ctx, c.prefix+"lastgood")
}

// SetLastGood stores the rate without expiry.
func (c *RateCache) SetLastGood(ctx context.Context, rate decimal.Decimal) error {
	if err := c.client.Set(ctx, c.prefix+"lastgood", rate.String(), 0).Err(); err != nil {
		return fmt.Errorf("redis rate set lastgood: %w", err)
	}
	return nil
}

func (c *RateCache) get(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("redis rate get: %w", err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse cached rate %q: %w", val, err)
	}
	return rate, true, nil
}
