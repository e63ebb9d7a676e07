package routes

import (
	"net/http"

	"MeteoIot.influxDB/internal/controller"
	"MeteoIot.influxDB/internal/middleware"
	"MeteoIot.influxDB/internal/models"
	"MeteoIot.influxDB/internal/utils"
	"github.com/gorilla/mux"
)

// SetupRouter defines all API routes.
func SetupRouter(controller *controller.ReadingController) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger, middleware.Recoverer)

	// Device ingestion
	router.HandleFunc("/temp", controller.HandleIngest).Methods(http.MethodPost)
	// Viewer polling
	router.HandleFunc("/latest", controller.HandleLatest).Methods(http.MethodGet)
	router.HandleFunc("/health", controller.HandleHealth).Methods(http.MethodGet)

	router.NotFoundHandler = middleware.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeNotFound, "no such endpoint", nil, http.StatusNotFound))
	}))
	router.MethodNotAllowedHandler = middleware.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, "method not allowed", nil, http.StatusMethodNotAllowed))
	}))

	return router
}
