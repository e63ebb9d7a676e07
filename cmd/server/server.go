package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MeteoIot.influxDB/internal/config"
	"MeteoIot.influxDB/internal/controller"
	"MeteoIot.influxDB/internal/logging"
	"MeteoIot.influxDB/internal/mqttingest"
	"MeteoIot.influxDB/internal/repository"
	"MeteoIot.influxDB/internal/routes"
	"MeteoIot.influxDB/internal/service"
	"github.com/rs/cors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevelValue())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the store, then wire service and controller on top of it
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	repo, err := repository.Open(connectCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			slog.Warn("Error closing store", "error", err)
		}
	}()

	readingService := service.NewReadingService(repo)
	readingController := controller.NewReadingController(readingService)

	if cfg.MQTTEnabled() {
		subscriber := mqttingest.NewSubscriber(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic,
			mqttingest.ServiceIngester{Service: readingService}, cfg.StoreTimeout)
		if err := subscriber.Start(); err != nil {
			return err
		}
		defer subscriber.Stop()
	}

	// CORS setup
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(routes.SetupRouter(readingController)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server is running", "addr", server.Addr, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
