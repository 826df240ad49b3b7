package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/prasdika/fieldbooking/internal/core/domain"
)

// AvailabilityCache stores the booked interval list per (field, date)
// under fields:<fieldId>:availability:<date>. The TTL is only a fallback;
// correctness comes from synchronous invalidation on every write.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func cacheKey(fieldID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("fields:%s:availability:%s", fieldID, date.Format("2006-01-02"))
}

func (c *AvailabilityCache) GetDay(ctx context.Context, fieldID uuid.UUID, date time.Time) ([]domain.Interval, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(fieldID, date)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var busy []domain.Interval
	if err := json.Unmarshal([]byte(raw), &busy); err != nil {
		// A corrupt entry is treated as a miss; the next SetDay fixes it.
		return nil, false, nil
	}

	return busy, true, nil
}

func (c *AvailabilityCache) SetDay(ctx context.Context, fieldID uuid.UUID, date time.Time, busy []domain.Interval) error {
	if busy == nil {
		busy = []domain.Interval{}
	}

	payload, err := json.Marshal(busy)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, cacheKey(fieldID, date), payload, c.ttl).Err()
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, fieldID uuid.UUID, date time.Time) error {
	return c.client.Del(ctx, cacheKey(fieldID, date)).Err()
}
