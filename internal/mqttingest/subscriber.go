// Package mqttingest accepts device readings published over MQTT. Payloads use the
// same JSON shape as POST /temp and go through the same ingestion path.
package mqttingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"MeteoIot.influxDB/internal/service"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Ingester is the part of the reading service the subscriber needs.
type Ingester interface {
	IngestPayload(ctx context.Context, body []byte) error
}

// ServiceIngester adapts a ReadingService to Ingester.
type ServiceIngester struct {
	Service *service.ReadingService
}

func (s ServiceIngester) IngestPayload(ctx context.Context, body []byte) error {
	_, err := s.Service.IngestPayload(ctx, body)
	return err
}

// Subscriber listens on one topic and stores every valid payload.
type Subscriber struct {
	client   mqtt.Client
	topic    string
	ingester Ingester
	timeout  time.Duration
}

// NewSubscriber configures the MQTT client. The topic is (re)subscribed on every connect.
func NewSubscriber(broker, clientID, topic string, ingester Ingester, timeout time.Duration) *Subscriber {
	s := &Subscriber{topic: topic, ingester: ingester, timeout: timeout}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			slog.Warn("MQTT connection lost", "error", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			token := c.Subscribe(s.topic, 1, s.HandleMessage)
			if token.Wait() && token.Error() != nil {
				slog.Error("MQTT subscribe failed", "topic", s.topic, "error", token.Error())
				return
			}
			slog.Info("Listening for readings on MQTT", "topic", s.topic)
		})
	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker.
func (s *Subscriber) Start() error {
	token := s.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// Stop disconnects, waiting up to 250ms for in-flight work.
func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}

// HandleMessage stores one MQTT payload. Invalid payloads are logged and dropped.
func (s *Subscriber) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.ingester.IngestPayload(ctx, msg.Payload()); err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			slog.Warn("Rejected MQTT reading", "topic", msg.Topic(), "payload", string(msg.Payload()), "error", err)
			return
		}
		slog.Error("Failed to store MQTT reading", "topic", msg.Topic(), "error", err)
		return
	}
	slog.Debug("MQTT reading stored", "topic", msg.Topic())
}
