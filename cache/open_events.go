package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"sportsbook/models"
)

const (
	openEventsKey = "events:open"
	openEventsTTL = 30 * time.Second
)

// OpenEventsCache keeps the open-events listing in redis. Every failure is
// treated as a miss: the listing always has the database behind it, so a
// redis outage degrades to slower reads, never to errors.
type OpenEventsCache struct {
	rdb *redis.Client
}

// NewOpenEventsCache creates a redis-backed open events cache
func NewOpenEventsCache(rdb *redis.Client) *OpenEventsCache {
	return &OpenEventsCache{rdb: rdb}
}

// GetOpenEvents returns the cached listing and whether it was present
func (c *OpenEventsCache) GetOpenEvents(ctx context.Context) ([]*models.Event, bool) {
	b, err := c.rdb.Get(ctx, openEventsKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.WithError(err).Warn("Open events cache read failed")
		return nil, false
	}

	var eventList []*models.Event
	if err := json.Unmarshal(b, &eventList); err != nil {
		log.WithError(err).Warn("Open events cache entry corrupt, dropping it")
		c.Invalidate(ctx)
		return nil, false
	}

	return eventList, true
}

// SetOpenEvents stores the listing with a short TTL
func (c *OpenEventsCache) SetOpenEvents(ctx context.Context, eventList []*models.Event) {
	b, err := json.Marshal(eventList)
	if err != nil {
		log.WithError(err).Warn("Failed to marshal open events for cache")
		return
	}

	if err := c.rdb.Set(ctx, openEventsKey, b, openEventsTTL).Err(); err != nil {
		log.WithError(err).Warn("Open events cache write failed")
	}
}

// Invalidate drops the cached listing
func (c *OpenEventsCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, openEventsKey).Err(); err != nil {
		log.WithError(err).Warn("Open events cache invalidation failed")
	}
}
