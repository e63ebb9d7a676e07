// sensorctl emulates the meteo sensor (push) or polls the API like a dashboard (watch).
//
//	sensorctl push -url http://localhost:10000 -interval 2s -status ok
//	sensorctl watch -url http://localhost:10000
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MeteoIot.influxDB/internal/client"
	"MeteoIot.influxDB/internal/emulator"
	"MeteoIot.influxDB/internal/logging"
	"MeteoIot.influxDB/internal/models"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	logging.Setup(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "push":
		err = push(ctx, os.Args[2:])
	case "watch":
		err = watch(ctx, os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("sensorctl failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sensorctl push|watch [flags]")
}

func push(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("push", flag.ContinueOnError)
	url := fs.String("url", "http://localhost:10000", "meteo API base URL")
	interval := fs.Duration("interval", 2*time.Second, "time between readings")
	status := fs.String("status", string(models.StatusOK), "status reported by the device")
	baseTemp := fs.Float64("temp", 20, "temperature the readings drift around")
	count := fs.Int("count", 0, "number of readings to send, 0 for no limit")
	fault := fs.Bool("fault", false, "report a sensor fault instead of a temperature")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkInterval(*interval); err != nil {
		return err
	}

	device := emulator.NewDevice(client.New(*url, 5*time.Second), *status, *baseTemp)
	device.SensorFault = *fault
	slog.Info("Emulating sensor", "url", *url, "interval", *interval, "status", *status)
	return device.Run(ctx, *interval, *count)
}

func watch(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	url := fs.String("url", "http://localhost:10000", "meteo API base URL")
	interval := fs.Duration("interval", time.Second, "polling interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkInterval(*interval); err != nil {
		return err
	}

	api := client.New(*url, 5*time.Second)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		latest, err := api.Latest(ctx)
		if err != nil {
			slog.Warn("Polling failed", "error", err)
		} else {
			fmt.Fprintln(out, formatLatest(latest))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func checkInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("-interval must be positive, got %s", interval)
	}
	return nil
}

// formatLatest renders one dashboard line. Unknown statuses fall back to the
// generic unknown presentation.
func formatLatest(latest models.LatestStatus) string {
	status := models.ParseStatus(latest.Status)

	temp := "--.- °C"
	if latest.Temp != nil && status != models.StatusOffline && status != models.StatusNoData {
		temp = fmt.Sprintf("%.1f °C", *latest.Temp)
	}
	age := "never"
	if latest.AgeSeconds != nil {
		age = fmt.Sprintf("%.0fs ago", *latest.AgeSeconds)
	}
	return fmt.Sprintf("%-8s %-32s %s (%s)", status.Color(), status.Label(), temp, age)
}
