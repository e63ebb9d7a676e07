package repository

import (
	"context"
	"fmt"
	"time"

	"MeteoIot.influxDB/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StoredReading is the row persisted by SQLiteRepository. ID breaks timestamp ties
// in favour of the later insert.
type StoredReading struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Time        time.Time `gorm:"index;not null"`
	Temperature *float64
	Status      string `gorm:"not null"`
}

func (StoredReading) TableName() string {
	return "sensor_readings"
}

// SQLiteRepository stores readings in a local SQLite file, for gateways running without
// a time-series server.
type SQLiteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Migrate the schema
	if err := db.AutoMigrate(&StoredReading{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, reading models.Reading) error {
	row := StoredReading{
		Time:        reading.Timestamp.UTC(),
		Temperature: reading.Temperature,
		Status:      reading.Status,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return unavailable("insert reading", err)
	}
	return nil
}

func (r *SQLiteRepository) Latest(ctx context.Context) (*models.Reading, error) {
	var rows []StoredReading
	result := r.db.WithContext(ctx).Order("time desc, id desc").Limit(1).Find(&rows)
	if result.Error != nil {
		return nil, unavailable("select latest reading", result.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &models.Reading{
		Temperature: row.Temperature,
		Status:      row.Status,
		Timestamp:   row.Time.UTC(),
	}, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return unavailable("ping sqlite", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable("ping sqlite", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
