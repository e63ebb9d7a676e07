package repository

import (
	"context"
	"testing"
	"time"

	"MeteoIot.influxDB/internal/models"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func TestMemoryRepositoryLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Nil(t, latest)

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, models.Reading{Temperature: ptr(20), Status: "ok", Timestamp: t0}))
	require.NoError(t, repo.Insert(ctx, models.Reading{Status: "ble", Timestamp: t0.Add(time.Second)}))

	latest, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "ble", latest.Status)
	require.Nil(t, latest.Temperature)
	require.Equal(t, 2, repo.Len())
}

func TestMemoryRepositoryTiesFavourLaterInsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, models.Reading{Status: "wifi", Timestamp: at}))
	require.NoError(t, repo.Insert(ctx, models.Reading{Status: "ok", Timestamp: at}))

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", latest.Status)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	temp := 18.0
	require.NoError(t, repo.Insert(ctx, models.Reading{Temperature: &temp, Status: "ok", Timestamp: time.Now().UTC()}))

	temp = 99
	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	*latest.Temperature = -1

	again, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, 18.0, *again.Temperature)
}

func TestMemoryRepositoryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewMemoryRepository()

	err := repo.Insert(ctx, models.Reading{Status: "ok"})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = repo.Latest(ctx)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.Zero(t, repo.Len())
}

type deadlineRecorder struct {
	MemoryRepository
	hadDeadline bool
}

func (d *deadlineRecorder) Latest(ctx context.Context) (*models.Reading, error) {
	_, d.hadDeadline = ctx.Deadline()
	return d.MemoryRepository.Latest(ctx)
}

func TestWithTimeout(t *testing.T) {
	inner := &deadlineRecorder{}
	repo := WithTimeout(inner, time.Second)

	_, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.True(t, inner.hadDeadline)

	require.Same(t, Repository(inner), WithTimeout(inner, 0))
}
