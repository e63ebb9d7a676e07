package controller

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"MeteoIot.influxDB/internal/models"
	"MeteoIot.influxDB/internal/repository"
	"MeteoIot.influxDB/internal/service"
	"MeteoIot.influxDB/internal/utils"
)

// ReadingController handles HTTP requests for sensor readings.
type ReadingController struct {
	service *service.ReadingService
}

// NewReadingController creates a new ReadingController.
func NewReadingController(service *service.ReadingService) *ReadingController {
	return &ReadingController{
		service: service,
	}
}

// HandleIngest handles POST /temp.
func (c *ReadingController) HandleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeBadRequest, "error reading request body", nil, http.StatusBadRequest))
		return
	}
	defer r.Body.Close()

	reading, err := c.service.IngestPayload(r.Context(), body)
	if err != nil {
		var payloadErr *service.PayloadError
		if errors.As(err, &payloadErr) {
			slog.Warn("Rejected reading", "reason", payloadErr.Reason)
			utils.RespondWithError(w, models.NewAPIError(payloadErr.Code, payloadErr.Reason, nil, http.StatusBadRequest))
			return
		}
		slog.Error("Failed to store reading", "error", err)
		utils.RespondWithError(w, storeError(err))
		return
	}

	slog.Info("Reading received", "status", reading.Status, "has_temp", reading.Temperature != nil)
	utils.RespondWithJSON(w, http.StatusOK, models.Ack{Status: "ok"})
}

// HandleLatest handles GET /latest.
func (c *ReadingController) HandleLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := c.service.Latest(r.Context())
	if err != nil {
		slog.Error("Failed to fetch latest reading", "error", err)
		utils.RespondWithError(w, storeError(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, latest)
}

// HandleHealth handles GET /health.
func (c *ReadingController) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Health(r.Context()); err != nil {
		slog.Warn("Health check failed", "error", err)
		utils.RespondWithError(w, storeError(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.Ack{Status: "ok"})
}

// storeError maps a store failure onto a 503. Any other failure is a 500.
func storeError(err error) models.APIError {
	if errors.Is(err, repository.ErrStoreUnavailable) {
		return models.NewAPIError(models.ErrorCodeStoreUnavailable, "the reading store is unavailable", nil, http.StatusServiceUnavailable)
	}
	return models.NewAPIError(models.ErrorCodeInternalServerError, "internal server error", nil, http.StatusInternalServerError)
}
