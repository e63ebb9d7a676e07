package repository

import (
	"context"
	"sync"

	"MeteoIot.influxDB/internal/models"
)

// MemoryRepository keeps readings in process memory. It backs tests and local runs
// with STORE_DRIVER=memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	readings []models.Reading
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(ctx context.Context, reading models.Reading) error {
	if err := ctx.Err(); err != nil {
		return unavailable("insert", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = append(r.readings, copyReading(reading))
	return nil
}

// Latest returns the reading with the greatest timestamp; on ties the later insert wins.
func (r *MemoryRepository) Latest(ctx context.Context) (*models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("latest", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.readings) == 0 {
		return nil, nil
	}
	latest := r.readings[0]
	for _, reading := range r.readings[1:] {
		if !reading.Timestamp.Before(latest.Timestamp) {
			latest = reading
		}
	}
	out := copyReading(latest)
	return &out, nil
}

// Len returns the number of stored readings.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.readings)
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func copyReading(reading models.Reading) models.Reading {
	if reading.Temperature != nil {
		temp := *reading.Temperature
		reading.Temperature = &temp
	}
	return reading
}
