package repository

import (
	"context"
	"fmt"
	"log/slog"

	"MeteoIot.influxDB/internal/config"
	"github.com/redis/go-redis/v9"
)

// Open connects the store selected by cfg.StoreDriver. When REDIS_ADDR is set the
// store is fronted by a RedisLatestCache. Every call is bounded by cfg.StoreTimeout.
func Open(ctx context.Context, cfg config.Config) (Repository, error) {
	var (
		repo Repository
		err  error
	)

	switch cfg.StoreDriver {
	case config.DriverInfluxDB:
		influx := NewInfluxDBRepository(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket, cfg.DeviceID)
		if err = influx.Ping(ctx); err == nil {
			err = influx.EnsureBucket(ctx)
		}
		if err != nil {
			influx.Close()
			return nil, err
		}
		repo = influx
	case config.DriverPostgres:
		repo, err = NewPostgresRepository(ctx, cfg.PostgresURL)
	case config.DriverSQLite:
		repo, err = NewSQLiteRepository(cfg.SQLitePath)
	case config.DriverMongo:
		repo, err = NewMongoRepository(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case config.DriverMemory:
		repo = NewMemoryRepository()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("Store connected", "driver", cfg.StoreDriver)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			repo.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		repo = NewRedisLatestCache(repo, client, "meteo:latest:"+cfg.DeviceID)
		slog.Info("Latest reading cache enabled", "addr", cfg.RedisAddr)
	}

	return WithTimeout(repo, cfg.StoreTimeout), nil
}
