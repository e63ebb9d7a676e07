package emulator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"MeteoIot.influxDB/internal/models"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	mu   sync.Mutex
	sent []models.ReadingRequest
	fail bool
}

func (p *recordingPusher) PushReading(ctx context.Context, req models.ReadingRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("connection refused")
	}
	p.sent = append(p.sent, req)
	return nil
}

func TestNextDriftsAroundBase(t *testing.T) {
	d := NewDevice(&recordingPusher{}, "ok", 20)

	first := d.Next()
	require.Equal(t, 20.0, *first.Temp)
	require.Equal(t, "ok", *first.Status)

	for i := 0; i < 200; i++ {
		req := d.Next()
		require.InDelta(t, 20.0, *req.Temp, 1.5)
	}
}

func TestSensorFaultOmitsTemperature(t *testing.T) {
	d := NewDevice(&recordingPusher{}, "ok", 20)
	d.SensorFault = true

	req := d.Next()
	require.Nil(t, req.Temp)
	require.Equal(t, "erreur_capteur", *req.Status)
}

func TestRunStopsAfterCount(t *testing.T) {
	p := &recordingPusher{}
	d := NewDevice(p, "wifi", 18)

	require.NoError(t, d.Run(context.Background(), time.Millisecond, 3))
	require.Len(t, p.sent, 3)
}

func TestRunRejectsNonPositiveInterval(t *testing.T) {
	p := &recordingPusher{}
	d := NewDevice(p, "ok", 18)

	require.Error(t, d.Run(context.Background(), 0, 1))
	require.Error(t, d.Run(context.Background(), -time.Second, 1))
	require.Empty(t, p.sent)
}

func TestRunStopsOnCancel(t *testing.T) {
	p := &recordingPusher{fail: true}
	d := NewDevice(p, "ok", 18)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx, 5*time.Millisecond, 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	require.Empty(t, p.sent)
}
