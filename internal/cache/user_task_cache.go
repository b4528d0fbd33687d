package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "usertasks:"

// ListEntry is the cached form of a personal task listing.
type ListEntry struct {
	Tasks []models.UserTask `json:"tasks"`
	Total int64             `json:"total"`
}

// UserTaskCache caches the first page of a user's task listing in Redis,
// keyed by user and status filter. Writes invalidate all of the user's keys.
type UserTaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewUserTaskCache returns a new UserTaskCache.
func NewUserTaskCache(rdb *redis.Client, ttl time.Duration) *UserTaskCache {
	return &UserTaskCache{rdb: rdb, ttl: ttl}
}

func listKey(userID uint64, status string) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("%s%d:%s", keyPrefix, userID, status)
}

// GetList returns the cached listing or nil on miss.
func (c *UserTaskCache) GetList(ctx context.Context, userID uint64, status string) (*ListEntry, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, status)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry ListEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetList stores the listing in cache.
func (c *UserTaskCache) SetList(ctx context.Context, userID uint64, status string, entry ListEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, status), b, c.ttl).Err()
}

// Invalidate removes all cached listings of a user (cache invalidation on
// write).
func (c *UserTaskCache) Invalidate(ctx context.Context, userID uint64) error {
	pattern := fmt.Sprintf("%s%d:*", keyPrefix, userID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
