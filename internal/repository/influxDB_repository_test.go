package repository

import (
	"testing"
	"time"

	"MeteoIot.influxDB/internal/models"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/stretchr/testify/require"
)

func TestBuildLatestTimeQuery(t *testing.T) {
	q := buildLatestTimeQuery("meteo", `sensor"1`)
	require.Contains(t, q, `from(bucket: "meteo")`)
	require.Contains(t, q, `r["_measurement"] == "sensor_readings"`)
	require.Contains(t, q, `r["device_id"] == "sensor\"1"`)
	require.Contains(t, q, `r["_field"] == "status"`)
	require.Contains(t, q, `last()`)
	require.NotContains(t, q, `pivot(`)
}

func TestBuildReadingAtQueryPivotsOneInstant(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))

	q := buildReadingAtQuery("meteo", "meteo-sensor", at)
	require.Contains(t, q, `range(start: 2025-03-01T11:00:00.123456789Z, stop: 2025-03-01T11:00:00.12345679Z)`)
	require.Contains(t, q, `r["device_id"] == "meteo-sensor"`)
	require.Contains(t, q, `pivot(rowKey: ["_time"]`)
	require.Contains(t, q, `limit(n: 1)`)
}

func TestPointFieldsMarkMissingTemperature(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	fields := pointFields(models.Reading{Status: "ble", Timestamp: at})
	require.Equal(t, map[string]interface{}{"status": "ble", "has_temperature": false}, fields)

	fields = pointFields(models.Reading{Temperature: ptr(21.5), Status: "ok", Timestamp: at})
	require.Equal(t, map[string]interface{}{"status": "ok", "has_temperature": true, "temperature": 21.5}, fields)
}

// Two points at the same instant merge field by field. The later status-only
// point must not come back with the earlier temperature.
func TestReadingFromMergedRecord(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	r, err := readingFromRecord(query.NewFluxRecord(0, map[string]interface{}{
		"_time":           at,
		"temperature":     21.5,
		"status":          "ble",
		"has_temperature": false,
	}))
	require.NoError(t, err)
	require.Nil(t, r.Temperature)
	require.Equal(t, "ble", r.Status)

	r, err = readingFromRecord(query.NewFluxRecord(0, map[string]interface{}{
		"_time":           at,
		"temperature":     19.0,
		"status":          "ok",
		"has_temperature": true,
	}))
	require.NoError(t, err)
	require.Equal(t, 19.0, *r.Temperature)
}

func TestReadingFromRecord(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	r, err := readingFromRecord(query.NewFluxRecord(0, map[string]interface{}{
		"_time":       at,
		"temperature": 21.5,
		"status":      "ok",
	}))
	require.NoError(t, err)
	require.Equal(t, 21.5, *r.Temperature)
	require.Equal(t, "ok", r.Status)
	require.True(t, r.Timestamp.Equal(at))

	r, err = readingFromRecord(query.NewFluxRecord(0, map[string]interface{}{
		"_time":  at,
		"status": "ble",
	}))
	require.NoError(t, err)
	require.Nil(t, r.Temperature)
	require.Equal(t, "ble", r.Status)

	r, err = readingFromRecord(query.NewFluxRecord(0, map[string]interface{}{
		"_time":       at,
		"temperature": int64(19),
	}))
	require.NoError(t, err)
	require.Equal(t, 19.0, *r.Temperature)
	require.Equal(t, "unknown", r.Status)

	_, err = readingFromRecord(query.NewFluxRecord(0, map[string]interface{}{
		"_time":       at,
		"temperature": "hot",
	}))
	require.Error(t, err)
}
