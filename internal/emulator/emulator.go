// Package emulator stands in for the physical sensor: it pushes a reading with a
// slowly drifting temperature at a fixed interval.
package emulator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"MeteoIot.influxDB/internal/models"
)

// Pusher sends readings to the ingestion API.
type Pusher interface {
	PushReading(ctx context.Context, req models.ReadingRequest) error
}

// Device is an emulated sensor.
type Device struct {
	pusher   Pusher
	status   string
	baseTemp float64
	// SensorFault makes the device report erreur_capteur without a temperature.
	SensorFault bool

	step int
}

func NewDevice(pusher Pusher, status string, baseTemp float64) *Device {
	return &Device{pusher: pusher, status: status, baseTemp: baseTemp}
}

// Next returns the reading the device would send next and advances its state.
func (d *Device) Next() models.ReadingRequest {
	defer func() { d.step++ }()

	if d.SensorFault {
		status := string(models.StatusSensorError)
		return models.ReadingRequest{Status: &status}
	}
	// One full swing of +/-1.5 degrees every 120 readings.
	temp := d.baseTemp + 1.5*math.Sin(2*math.Pi*float64(d.step)/120)
	temp = math.Round(temp*100) / 100
	status := d.status
	return models.ReadingRequest{Temp: &temp, Status: &status}
}

// Push sends a single reading.
func (d *Device) Push(ctx context.Context) error {
	return d.pusher.PushReading(ctx, d.Next())
}

// Run pushes a reading every interval until ctx is cancelled or count readings were
// sent (count <= 0 means forever). Push failures are logged and the loop carries on,
// as the real device does when the server is unreachable.
func (d *Device) Run(ctx context.Context, interval time.Duration, count int) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for {
		if err := d.Push(ctx); err != nil {
			slog.Warn("Failed to push reading", "error", err)
		} else {
			sent++
			slog.Info("Reading pushed", "count", sent)
		}
		if count > 0 && sent >= count {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
