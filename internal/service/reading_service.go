package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"MeteoIot.influxDB/internal/models"
	"MeteoIot.influxDB/internal/repository"
)

// ErrBadRequest marks an ingestion payload that could not be parsed.
var ErrBadRequest = errors.New("bad request")

// PayloadError describes why a payload was rejected.
type PayloadError struct {
	Code   models.ErrorCode
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *PayloadError) Unwrap() error {
	return ErrBadRequest
}

// ReadingService handles ingestion and the latest-status query.
type ReadingService struct {
	repo repository.Repository
	now  func() time.Time
}

// NewReadingService creates a ReadingService reading the wall clock.
func NewReadingService(repo repository.Repository) *ReadingService {
	return NewReadingServiceWithClock(repo, time.Now)
}

// NewReadingServiceWithClock creates a ReadingService with an injected clock.
func NewReadingServiceWithClock(repo repository.Repository, now func() time.Time) *ReadingService {
	return &ReadingService{repo: repo, now: now}
}

// ParseReadingRequest decodes a POST /temp body. Both fields are optional; a body
// that is not a JSON object, or fields of the wrong type, are rejected. Keys match
// exactly, so "TEMP" is an unknown field and ignored like any other.
func ParseReadingRequest(body []byte) (models.ReadingRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return models.ReadingRequest{}, notAnObject()
		}
		return models.ReadingRequest{}, &PayloadError{Code: models.ErrorCodeInvalidFormat, Reason: "body is not valid JSON"}
	}
	if fields == nil {
		return models.ReadingRequest{}, notAnObject()
	}

	var req models.ReadingRequest
	if raw, ok := fields["temp"]; ok {
		if err := json.Unmarshal(raw, &req.Temp); err != nil {
			return models.ReadingRequest{}, fieldTypeError("temp", "number")
		}
	}
	if raw, ok := fields["status"]; ok {
		if err := json.Unmarshal(raw, &req.Status); err != nil {
			return models.ReadingRequest{}, fieldTypeError("status", "string")
		}
	}
	return req, nil
}

func notAnObject() *PayloadError {
	return &PayloadError{Code: models.ErrorCodeInvalidFieldType, Reason: "body must be a JSON object"}
}

func fieldTypeError(field, want string) *PayloadError {
	return &PayloadError{Code: models.ErrorCodeInvalidFieldType, Reason: fmt.Sprintf("field %q must be a %s", field, want)}
}

// Ingest stores one reading stamped with the server clock.
func (s *ReadingService) Ingest(ctx context.Context, req models.ReadingRequest) (models.Reading, error) {
	status := ""
	if req.Status != nil {
		status = *req.Status
	}
	reading := models.NewReading(req.Temp, status, s.now())

	if err := s.repo.Insert(ctx, reading); err != nil {
		return models.Reading{}, fmt.Errorf("store reading: %w", err)
	}
	slog.Debug("Reading stored", "status", reading.Status, "has_temp", reading.Temperature != nil)
	return reading, nil
}

// IngestPayload parses and stores a raw payload.
func (s *ReadingService) IngestPayload(ctx context.Context, body []byte) (models.Reading, error) {
	req, err := ParseReadingRequest(body)
	if err != nil {
		return models.Reading{}, err
	}
	return s.Ingest(ctx, req)
}

// Latest derives the current status from the freshest stored reading.
func (s *ReadingService) Latest(ctx context.Context) (models.LatestStatus, error) {
	reading, err := s.repo.Latest(ctx)
	if err != nil {
		return models.LatestStatus{}, fmt.Errorf("fetch latest reading: %w", err)
	}
	return Derive(reading, s.now()), nil
}

// Health reports whether the store is reachable.
func (s *ReadingService) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
