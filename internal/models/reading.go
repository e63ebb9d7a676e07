package models

import "time"

// Reading is one observation pushed by the sensor device.
// Temperature is nil when the device reported a status without a measurement.
type Reading struct {
	Temperature *float64  `json:"temp"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewReading builds a reading stamped with the given server time in UTC.
// An empty status is recorded as "unknown".
func NewReading(temperature *float64, status string, at time.Time) Reading {
	if status == "" {
		status = string(StatusUnknown)
	}
	return Reading{
		Temperature: temperature,
		Status:      status,
		Timestamp:   at.UTC(),
	}
}
