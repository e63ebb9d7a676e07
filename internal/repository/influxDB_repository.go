// internal/repository/influxDB_repository.go

package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"MeteoIot.influxDB/internal/models"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/influxdata/influxdb-client-go/v2/domain"
)

const (
	readingsMeasurement = "sensor_readings"
	fieldTemperature    = "temperature"
	fieldStatus         = "status"
	fieldHasTemperature = "has_temperature"
)

// latestTimeQuery finds the time of the newest point. Every point carries a
// status field, so last() on it is enough.
const latestTimeQuery = `from(bucket: "%s")
	|> range(start: 0)
	|> filter(fn: (r) => r["_measurement"] == "%s")
	|> filter(fn: (r) => r["device_id"] == "%s")
	|> filter(fn: (r) => r["_field"] == "%s")
	|> last()
	|> keep(columns: ["_time"])`

// readingAtQuery pivots the fields of the single point at one instant.
const readingAtQuery = `from(bucket: "%s")
	|> range(start: %s, stop: %s)
	|> filter(fn: (r) => r["_measurement"] == "%s")
	|> filter(fn: (r) => r["device_id"] == "%s")
	|> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
	|> group()
	|> limit(n: 1)`

// InfluxDBRepository stores readings as points in an InfluxDB bucket.
type InfluxDBRepository struct {
	client   influxdb2.Client
	org      string
	bucket   string
	deviceID string
}

// NewInfluxDBRepository creates a new InfluxDBRepository.
func NewInfluxDBRepository(url, token, org, bucket, deviceID string) *InfluxDBRepository {
	client := influxdb2.NewClient(url, token)
	return &InfluxDBRepository{
		client:   client,
		org:      org,
		bucket:   bucket,
		deviceID: deviceID,
	}
}

// Insert writes the reading as a single point. The temperature field is omitted when
// absent; has_temperature records that, since two points written at the same
// instant merge field by field.
func (r *InfluxDBRepository) Insert(ctx context.Context, reading models.Reading) error {
	writeAPI := r.client.WriteAPIBlocking(r.org, r.bucket)

	p := influxdb2.NewPoint(
		readingsMeasurement,
		map[string]string{"device_id": r.deviceID},
		pointFields(reading),
		reading.Timestamp,
	)
	if err := writeAPI.WritePoint(ctx, p); err != nil {
		return unavailable("write point", err)
	}
	slog.Debug("Reading written to InfluxDB", "bucket", r.bucket, "status", reading.Status, "time", reading.Timestamp)
	return nil
}

// Latest returns the most recent reading of the configured device.
func (r *InfluxDBRepository) Latest(ctx context.Context) (*models.Reading, error) {
	at, found, err := r.latestTime(ctx)
	if err != nil || !found {
		return nil, err
	}

	queryAPI := r.client.QueryAPI(r.org)
	result, err := queryAPI.Query(ctx, buildReadingAtQuery(r.bucket, r.deviceID, at))
	if err != nil {
		return nil, unavailable("query latest", err)
	}
	defer result.Close()

	if !result.Next() {
		if result.Err() != nil {
			return nil, unavailable("query latest", result.Err())
		}
		return nil, nil
	}
	reading, err := readingFromRecord(result.Record())
	if err != nil {
		return nil, unavailable("decode latest", err)
	}
	return reading, nil
}

// Ping checks the health of the InfluxDB server.
func (r *InfluxDBRepository) Ping(ctx context.Context) error {
	health, err := r.client.Health(ctx)
	if err != nil {
		return unavailable("health", err)
	}
	if health.Status != domain.HealthCheckStatusPass {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return unavailable("health", fmt.Errorf("InfluxDB health check failed: %s", msg))
	}
	return nil
}

func (r *InfluxDBRepository) Close() error {
	r.client.Close()
	return nil
}

// EnsureBucket creates the readings bucket when it does not exist yet.
func (r *InfluxDBRepository) EnsureBucket(ctx context.Context) error {
	exists, err := r.bucketExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	org, err := r.client.OrganizationsAPI().FindOrganizationByName(ctx, r.org)
	if err != nil {
		return unavailable("find organization", err)
	}
	if org == nil {
		return fmt.Errorf("organization '%s' not found", r.org)
	}
	if _, err := r.client.BucketsAPI().CreateBucketWithName(ctx, org, r.bucket); err != nil {
		return unavailable("create bucket", err)
	}
	slog.Info("Bucket created", "bucket", r.bucket, "org", r.org)
	return nil
}

func (r *InfluxDBRepository) bucketExists(ctx context.Context) (bool, error) {
	_, err := r.client.BucketsAPI().FindBucketByName(ctx, r.bucket)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, unavailable("find bucket", err)
	}
	return true, nil
}

func (r *InfluxDBRepository) latestTime(ctx context.Context) (time.Time, bool, error) {
	result, err := r.client.QueryAPI(r.org).Query(ctx, buildLatestTimeQuery(r.bucket, r.deviceID))
	if err != nil {
		return time.Time{}, false, unavailable("query latest time", err)
	}
	defer result.Close()

	var (
		latest time.Time
		found  bool
	)
	for result.Next() {
		if at := result.Record().Time(); !found || at.After(latest) {
			latest, found = at, true
		}
	}
	if result.Err() != nil {
		return time.Time{}, false, unavailable("query latest time", result.Err())
	}
	return latest, found, nil
}

func pointFields(reading models.Reading) map[string]interface{} {
	fields := map[string]interface{}{
		fieldStatus:         reading.Status,
		fieldHasTemperature: reading.Temperature != nil,
	}
	if reading.Temperature != nil {
		fields[fieldTemperature] = *reading.Temperature
	}
	return fields
}

func buildLatestTimeQuery(bucket, deviceID string) string {
	return fmt.Sprintf(latestTimeQuery, escapeFlux(bucket), readingsMeasurement, escapeFlux(deviceID), fieldStatus)
}

func buildReadingAtQuery(bucket, deviceID string, at time.Time) string {
	start := at.UTC().Format(time.RFC3339Nano)
	stop := at.Add(time.Nanosecond).UTC().Format(time.RFC3339Nano)
	return fmt.Sprintf(readingAtQuery, escapeFlux(bucket), start, stop, readingsMeasurement, escapeFlux(deviceID))
}

func escapeFlux(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func readingFromRecord(record *query.FluxRecord) (*models.Reading, error) {
	reading := &models.Reading{
		Status:    string(models.StatusUnknown),
		Timestamp: record.Time().UTC(),
	}
	if status, ok := record.ValueByKey(fieldStatus).(string); ok && status != "" {
		reading.Status = status
	}

	// Points written before has_temperature existed only have the temperature field.
	if hasTemp, ok := record.ValueByKey(fieldHasTemperature).(bool); ok && !hasTemp {
		return reading, nil
	}

	switch v := record.ValueByKey(fieldTemperature).(type) {
	case nil:
	case float64:
		reading.Temperature = &v
	case int64:
		temp := float64(v)
		reading.Temperature = &temp
	default:
		return nil, fmt.Errorf("unexpected temperature type %T", v)
	}
	return reading, nil
}
