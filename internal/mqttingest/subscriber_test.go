package mqttingest

import (
	"context"
	"testing"
	"time"

	"MeteoIot.influxDB/internal/repository"
	"MeteoIot.influxDB/internal/service"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newTestSubscriber() (*Subscriber, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	svc := service.NewReadingServiceWithClock(repo, func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	})
	sub := NewSubscriber("tcp://127.0.0.1:1883", "test", "meteo/readings", ServiceIngester{Service: svc}, time.Second)
	return sub, repo
}

func TestHandleMessageStoresReading(t *testing.T) {
	sub, repo := newTestSubscriber()

	sub.HandleMessage(nil, fakeMessage{topic: "meteo/readings", payload: []byte(`{"temp": 22.25, "status": "wifi"}`)})

	latest, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, 22.25, *latest.Temperature)
	require.Equal(t, "wifi", latest.Status)
}

func TestHandleMessageDropsInvalidPayload(t *testing.T) {
	sub, repo := newTestSubscriber()

	sub.HandleMessage(nil, fakeMessage{topic: "meteo/readings", payload: []byte(`{"temp": "hot"}`)})
	sub.HandleMessage(nil, fakeMessage{topic: "meteo/readings", payload: []byte(`garbage`)})

	require.Zero(t, repo.Len())
}
