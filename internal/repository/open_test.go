package repository

import (
	"context"
	"path/filepath"
	"testing"

	"MeteoIot.influxDB/internal/config"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.StoreDriver = config.DriverMemory
	repo, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.Close())

	cfg.StoreDriver = config.DriverSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "meteo.db")
	repo, err = Open(ctx, cfg)
	require.NoError(t, err)
	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Nil(t, latest)
	require.NoError(t, repo.Close())

	cfg.StoreDriver = "cassandra"
	_, err = Open(ctx, cfg)
	require.Error(t, err)
}
