package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MeteoIot.influxDB/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createReadingsTable = `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id          UUID PRIMARY KEY,
		time        TIMESTAMPTZ NOT NULL,
		temperature DOUBLE PRECISION,
		status      TEXT NOT NULL
	);
	ALTER TABLE sensor_readings ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
	CREATE INDEX IF NOT EXISTS sensor_readings_time_seq_idx ON sensor_readings (time DESC, seq DESC);
`

// timestamptz keeps microseconds only, so seq breaks ties in insert order.
const selectLatestReading = `
	SELECT time, temperature, status
	FROM sensor_readings
	ORDER BY time DESC, seq DESC
	LIMIT 1
`

// PostgresRepository stores readings in a Postgres (or TimescaleDB) table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to Postgres and makes sure the readings table exists.
func NewPostgresRepository(ctx context.Context, url string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("configure postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("ping postgres", err)
	}
	if _, err := pool.Exec(ctx, createReadingsTable); err != nil {
		pool.Close()
		return nil, unavailable("create readings table", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, reading models.Reading) error {
	query := `INSERT INTO sensor_readings (id, time, temperature, status) VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, uuid.New().String(), reading.Timestamp, reading.Temperature, reading.Status)
	if err != nil {
		return unavailable("insert reading", err)
	}
	return nil
}

func (r *PostgresRepository) Latest(ctx context.Context) (*models.Reading, error) {
	var (
		at     time.Time
		temp   *float64
		status string
	)
	err := r.pool.QueryRow(ctx, selectLatestReading).Scan(&at, &temp, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("select latest reading", err)
	}
	return &models.Reading{Temperature: temp, Status: status, Timestamp: at.UTC()}, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return unavailable("ping postgres", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
