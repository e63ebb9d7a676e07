// Package client talks to the meteo HTTP API. It is used by the device emulator
// and the watch command of sensorctl.
package client

import (
	"context"
	"fmt"
	"time"

	"MeteoIot.influxDB/internal/models"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// PushReading posts one reading to /temp.
func (c *Client) PushReading(ctx context.Context, req models.ReadingRequest) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetError(&models.APIError{}).
		Post("/temp")
	if err != nil {
		return fmt.Errorf("post reading: %w", err)
	}
	if resp.IsError() {
		return responseError(resp)
	}
	return nil
}

// Latest fetches /latest.
func (c *Client) Latest(ctx context.Context) (models.LatestStatus, error) {
	var latest models.LatestStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&latest).
		SetError(&models.APIError{}).
		Get("/latest")
	if err != nil {
		return models.LatestStatus{}, fmt.Errorf("get latest: %w", err)
	}
	if resp.IsError() {
		return models.LatestStatus{}, responseError(resp)
	}
	return latest, nil
}

func responseError(resp *resty.Response) error {
	if apiErr, ok := resp.Error().(*models.APIError); ok && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode()
		return *apiErr
	}
	return fmt.Errorf("unexpected response %s: %s", resp.Status(), resp.String())
}
