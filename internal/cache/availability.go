package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/townbook-za/townbook/internal/domain/booking"
)

const availabilityTTL = 60 * time.Second

// AvailabilityCache memoizes slot computations per business/service/date.
// Keys embed a per-business version counter; a booking write bumps the
// counter and every cached day for that business goes stale at once.
type AvailabilityCache struct {
	rdb *redis.Client
}

func NewAvailabilityCache(rdb *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb}
}

func (c *AvailabilityCache) versionKey(businessID uint) string {
	return fmt.Sprintf("avail:ver:%d", businessID)
}

func (c *AvailabilityCache) slotKey(ctx context.Context, businessID, serviceID uint, date string) (string, error) {
	ver, err := c.rdb.Get(ctx, c.versionKey(businessID)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("avail:%d:%d:%d:%s", businessID, ver, serviceID, date), nil
}

func (c *AvailabilityCache) Get(ctx context.Context, businessID, serviceID uint, date string) ([]domain.TimeSlot, bool) {
	if c.rdb == nil {
		return nil, false
	}

	key, err := c.slotKey(ctx, businessID, serviceID, date)
	if err != nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *AvailabilityCache) Set(ctx context.Context, businessID, serviceID uint, date string, slots []domain.TimeSlot) {
	if c.rdb == nil {
		return
	}

	key, err := c.slotKey(ctx, businessID, serviceID, date)
	if err != nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	c.rdb.Set(ctx, key, raw, availabilityTTL)
}

// Invalidate bumps the business version so stale slot sets can no longer
// be read. Old keys simply expire.
func (c *AvailabilityCache) Invalidate(ctx context.Context, businessID uint) {
	if c.rdb == nil {
		return
	}
	c.rdb.Incr(ctx, c.versionKey(businessID))
}
