package models

// ReadingRequest is the body accepted by POST /temp and by the MQTT ingestion topic.
// Both fields are optional.
type ReadingRequest struct {
	Temp   *float64 `json:"temp,omitempty"`
	Status *string  `json:"status,omitempty"`
}

// Ack is returned once a reading has been stored.
type Ack struct {
	Status string `json:"status"`
}
