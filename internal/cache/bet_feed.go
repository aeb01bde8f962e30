package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const feedKeyPrefix = "wager:feed:open:"

// BetFeedCache keeps rendered pages of the open public bet feed. A nil
// *BetFeedCache always misses.
type BetFeedCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewBetFeedCache(c *redis.Client, ttl time.Duration) *BetFeedCache {
	return &BetFeedCache{Client: c, TTL: ttl}
}

func feedKey(limit, offset int) string {
	return fmt.Sprintf("%s%d:%d", feedKeyPrefix, limit, offset)
}

// Get returns the cached page and whether it was present.
func (c *BetFeedCache) Get(ctx context.Context, limit, offset int) ([]byte, bool, error) {
	if c == nil || c.Client == nil {
		return nil, false, nil
	}
	b, err := c.Client.Get(ctx, feedKey(limit, offset)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *BetFeedCache) Set(ctx context.Context, limit, offset int, page []byte) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Set(ctx, feedKey(limit, offset), page, c.TTL).Err()
}

// Invalidate drops every cached page of the feed.
func (c *BetFeedCache) Invalidate(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}
	iter := c.Client.Scan(ctx, 0, feedKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}
