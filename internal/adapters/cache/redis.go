package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"eventseating/internal/domain"
)

const keyPrefix = "seating:snapshot:"

// NewRedisClient connects to the Redis server at url (redis://[:password@]host:port/db) and
// pings it with a short timeout. Callers fall back to NewNoopSnapshotCache on error.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type redisSnapshotCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// cacheEntry is the stored value: the snapshot plus the date version it was built at.
type cacheEntry struct {
	Version  int64                   `json:"version"`
	Snapshot *domain.SeatingSnapshot `json:"snapshot"`
}

// NewRedisSnapshotCache stores snapshots as JSON under seating:snapshot:<date> for ttl, next to
// a seating:snapshot:<date>:version counter that Invalidate increments. Entries built at an
// older version read as misses. Cache failures are logged and treated as misses.
func NewRedisSnapshotCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) domain.SnapshotCache {
	return &redisSnapshotCache{client: client, ttl: ttl, logger: logger}
}

func snapshotKey(eventDate string) string {
	return keyPrefix + eventDate
}

func versionKey(eventDate string) string {
	return keyPrefix + eventDate + ":version"
}

func (c *redisSnapshotCache) Get(ctx context.Context, eventDate string) (*domain.SeatingSnapshot, bool) {
	vals, err := c.client.MGet(ctx, snapshotKey(eventDate), versionKey(eventDate)).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "snapshot cache read failed", "event_date", eventDate, "error", err)
		return nil, false
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, false
	}
	current, err := parseVersion(vals[1])
	if err != nil {
		c.logger.WarnContext(ctx, "snapshot cache version corrupt", "event_date", eventDate, "error", err)
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Snapshot == nil {
		c.logger.WarnContext(ctx, "snapshot cache entry corrupt", "event_date", eventDate, "error", err)
		return nil, false
	}
	if entry.Version != current {
		return nil, false
	}
	return entry.Snapshot, true
}

func (c *redisSnapshotCache) Version(ctx context.Context, eventDate string) (int64, bool) {
	v, err := c.client.Get(ctx, versionKey(eventDate)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		c.logger.WarnContext(ctx, "snapshot cache version read failed", "event_date", eventDate, "error", err)
		return 0, false
	}
	return v, true
}

func (c *redisSnapshotCache) Set(ctx context.Context, snapshot *domain.SeatingSnapshot, version int64) {
	raw, err := json.Marshal(cacheEntry{Version: version, Snapshot: snapshot})
	if err != nil {
		c.logger.WarnContext(ctx, "snapshot encode failed", "event_date", snapshot.EventDate, "error", err)
		return
	}
	if err := c.client.Set(ctx, snapshotKey(snapshot.EventDate), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache write failed", "event_date", snapshot.EventDate, "error", err)
	}
}

func (c *redisSnapshotCache) Invalidate(ctx context.Context, eventDate string) {
	if err := c.client.Incr(ctx, versionKey(eventDate)).Err(); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache invalidation failed", "event_date", eventDate, "error", err)
	}
	if err := c.client.Del(ctx, snapshotKey(eventDate)).Err(); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache invalidation failed", "event_date", eventDate, "error", err)
	}
}

// parseVersion reads an MGET version value; a missing counter is version 0.
func parseVersion(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected version type %T", v)
	}
	return strconv.ParseInt(s, 10, 64)
}

type noopSnapshotCache struct{}

// NewNoopSnapshotCache returns a cache that never hits.
func NewNoopSnapshotCache() domain.SnapshotCache {
	return noopSnapshotCache{}
}

func (noopSnapshotCache) Get(context.Context, string) (*domain.SeatingSnapshot, bool) {
	return nil, false
}

func (noopSnapshotCache) Version(context.Context, string) (int64, bool) {
	return 0, false
}

func (noopSnapshotCache) Set(context.Context, *domain.SeatingSnapshot, int64) {}

func (noopSnapshotCache) Invalidate(context.Context, string) {}
