package models

import "time"

// LatestStatus is the body returned by GET /latest.
// Pointer fields serialize as null when there is nothing to report.
type LatestStatus struct {
	Temp       *float64   `json:"temp"`
	Status     string     `json:"status"`
	Timestamp  *time.Time `json:"timestamp"`
	AgeSeconds *float64   `json:"age_seconds"`
}
