package service

import (
	"time"

	"MeteoIot.influxDB/internal/models"
)

// StaleThreshold is how long a device's self-reported status stays trusted after
// its last reading.
const StaleThreshold = 5 * time.Second

// Derive computes the externally visible status of the sensor from its latest
// reading and the current time. It never rewrites unknown device statuses and
// returns the stored temperature unchanged.
//
// A reading stamped in the future (clock skew between writers) is reported with
// an age of zero.
func Derive(reading *models.Reading, now time.Time) models.LatestStatus {
	if reading == nil {
		return models.LatestStatus{Status: string(models.StatusNoData)}
	}

	age := now.Sub(reading.Timestamp)
	if age < 0 {
		age = 0
	}

	status := reading.Status
	if age > StaleThreshold {
		status = string(models.StatusOffline)
	}

	ts := reading.Timestamp.UTC()
	ageSeconds := age.Seconds()
	return models.LatestStatus{
		Temp:       reading.Temperature,
		Status:     status,
		Timestamp:  &ts,
		AgeSeconds: &ageSeconds,
	}
}
