package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MeteoIot.influxDB/internal/models"
)

// ErrStoreUnavailable wraps every failure to reach or use the backing store.
var ErrStoreUnavailable = errors.New("store unavailable")

// Repository is the append-only time-series store holding sensor readings.
// Latest returns nil, nil when nothing has been stored yet.
type Repository interface {
	Insert(ctx context.Context, reading models.Reading) error
	Latest(ctx context.Context) (*models.Reading, error)
	Ping(ctx context.Context) error
	Close() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// timeoutRepository bounds every store call with a deadline.
type timeoutRepository struct {
	Repository
	timeout time.Duration
}

// WithTimeout wraps repo so that each call runs under its own deadline.
func WithTimeout(repo Repository, timeout time.Duration) Repository {
	if timeout <= 0 {
		return repo
	}
	return &timeoutRepository{Repository: repo, timeout: timeout}
}

func (r *timeoutRepository) Insert(ctx context.Context, reading models.Reading) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.Repository.Insert(ctx, reading)
}

func (r *timeoutRepository) Latest(ctx context.Context) (*models.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.Repository.Latest(ctx)
}

func (r *timeoutRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.Repository.Ping(ctx)
}
