package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"MeteoIot.influxDB/internal/controller"
	"MeteoIot.influxDB/internal/models"
	"MeteoIot.influxDB/internal/repository"
	"MeteoIot.influxDB/internal/routes"
	"MeteoIot.influxDB/internal/service"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*Client, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	svc := service.NewReadingService(repo)
	srv := httptest.NewServer(routes.SetupRouter(controller.NewReadingController(svc)))
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second), repo
}

func TestPushAndLatest(t *testing.T) {
	c, repo := newTestAPI(t)
	ctx := context.Background()

	latest, err := c.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "no_data", latest.Status)
	require.Nil(t, latest.AgeSeconds)

	temp := 21.5
	status := "ok"
	require.NoError(t, c.PushReading(ctx, models.ReadingRequest{Temp: &temp, Status: &status}))
	require.Equal(t, 1, repo.Len())

	latest, err = c.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", latest.Status)
	require.Equal(t, 21.5, *latest.Temp)
	require.NotNil(t, latest.Timestamp)
	require.Less(t, *latest.AgeSeconds, 5.0)
}

func TestPushStatusOnly(t *testing.T) {
	c, _ := newTestAPI(t)
	ctx := context.Background()

	status := "ble"
	require.NoError(t, c.PushReading(ctx, models.ReadingRequest{Status: &status}))

	latest, err := c.Latest(ctx)
	require.NoError(t, err)
	require.Nil(t, latest.Temp)
	require.Equal(t, "ble", latest.Status)
}

func TestServerErrorsAreDecoded(t *testing.T) {
	srv := httptest.NewServer(routes.SetupRouter(controller.NewReadingController(service.NewReadingService(repository.NewMemoryRepository()))))
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/missing-prefix", time.Second)

	err := c.PushReading(context.Background(), models.ReadingRequest{})
	var apiErr models.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, models.ErrorCodeNotFound, apiErr.Code)
	require.Equal(t, 404, apiErr.StatusCode)
}
