package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"MeteoIot.influxDB/internal/models"
	"github.com/redis/go-redis/v9"
)

// setIfNewer keeps the hash at KEYS[1] on the reading with the greatest timestamp
// (microseconds in ARGV[1]); equal timestamps are overwritten.
var setIfNewer = redis.NewScript(`
local ts = redis.call('HGET', KEYS[1], 'ts')
if ts and tonumber(ts) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'ts', ARGV[1], 'body', ARGV[2])
return 1
`)

// RedisLatestCache keeps a hot copy of the latest reading in Redis in front of the
// time-series store. The store stays the source of truth: inserts go to the store
// first, and any Redis failure falls back to the store.
type RedisLatestCache struct {
	next   Repository
	client *redis.Client
	key    string
}

func NewRedisLatestCache(next Repository, client *redis.Client, key string) *RedisLatestCache {
	return &RedisLatestCache{next: next, client: client, key: key}
}

func (c *RedisLatestCache) Insert(ctx context.Context, reading models.Reading) error {
	if err := c.next.Insert(ctx, reading); err != nil {
		return err
	}
	c.remember(ctx, reading)
	return nil
}

func (c *RedisLatestCache) Latest(ctx context.Context) (*models.Reading, error) {
	body, err := c.client.HGet(ctx, c.key, "body").Bytes()
	switch {
	case err == nil:
		reading, decodeErr := decodeCachedReading(body)
		if decodeErr == nil {
			return reading, nil
		}
		slog.Warn("Discarding unreadable cached reading", "key", c.key, "error", decodeErr)
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("Redis unavailable, reading latest from store", "error", err)
	}

	reading, err := c.next.Latest(ctx)
	if err != nil || reading == nil {
		return reading, err
	}
	c.remember(ctx, *reading)
	return reading, nil
}

func (c *RedisLatestCache) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

func (c *RedisLatestCache) Close() error {
	return errors.Join(c.client.Close(), c.next.Close())
}

// remember stores reading in Redis unless a newer one is already cached. When that
// fails the key is dropped and the next Latest reads through to the store.
func (c *RedisLatestCache) remember(ctx context.Context, reading models.Reading) {
	body, err := encodeCachedReading(reading)
	if err == nil {
		ts := strconv.FormatInt(reading.Timestamp.UnixMicro(), 10)
		err = setIfNewer.Run(ctx, c.client, []string{c.key}, ts, body).Err()
	}
	if err != nil {
		slog.Warn("Failed to cache latest reading", "key", c.key, "error", err)
		if delErr := c.client.Del(ctx, c.key).Err(); delErr != nil {
			slog.Error("Failed to drop cached reading", "key", c.key, "error", delErr)
		}
	}
}

func encodeCachedReading(reading models.Reading) (string, error) {
	body, err := json.Marshal(reading)
	if err != nil {
		return "", fmt.Errorf("encode cached reading: %w", err)
	}
	return string(body), nil
}

func decodeCachedReading(body []byte) (*models.Reading, error) {
	var reading models.Reading
	if err := json.Unmarshal(body, &reading); err != nil {
		return nil, fmt.Errorf("decode cached reading: %w", err)
	}
	reading.Timestamp = reading.Timestamp.UTC()
	return &reading, nil
}
