package slots

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListCache keeps recently read slot listings in Redis. Staleness is safe:
// a stale read can only make a caller attempt a booking the store's
// conditional update will reject.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache returns a cache, or nil when Redis is not configured.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ListCache{client: client, ttl: ttl}
}

func listKey(doctorID int64) string {
	return fmt.Sprintf("slots:doctor:%d", doctorID)
}

// Get returns the cached listing for a doctor, if any.
func (c *ListCache) Get(ctx context.Context, doctorID int64) ([]Slot, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, listKey(doctorID)).Bytes()
	if err != nil {
		return nil, false
	}
	var result []Slot
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return result, true
}

// Set stores a listing. Failures are ignored; the store remains the source
// of truth.
func (c *ListCache) Set(ctx context.Context, doctorID int64, listing []Slot) {
	if c == nil {
		return
	}
	data, err := json.Marshal(listing)
	if err != nil {
		return
	}
	c.client.Set(ctx, listKey(doctorID), data, c.ttl)
}

// Invalidate drops the cached listing after a slot write.
func (c *ListCache) Invalidate(ctx context.Context, doctorID int64) {
	if c == nil {
		return
	}
	c.client.Del(ctx, listKey(doctorID))
}
