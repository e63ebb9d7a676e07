package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"ble", "wifi", "ok", "offline", "no_data", "erreur_capteur", "unknown"} {
		require.Equal(t, Status(raw), ParseStatus(raw))
	}
	require.Equal(t, StatusUnknown, ParseStatus("rebooting"))
	require.Equal(t, StatusUnknown, ParseStatus(""))
	require.Equal(t, StatusUnknown, ParseStatus("OK"))
}

func TestStatusPresentationIsTotal(t *testing.T) {
	require.Equal(t, "Online", StatusOK.Label())
	require.Equal(t, "green", StatusOK.Color())
	require.Equal(t, "red", StatusOffline.Color())

	unrecognized := Status("firmware_update")
	require.Equal(t, StatusUnknown.Label(), unrecognized.Label())
	require.Equal(t, StatusUnknown.Color(), unrecognized.Color())
}

func TestNewReading(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	at := time.Date(2025, 1, 2, 13, 0, 0, 0, paris)

	r := NewReading(nil, "", at)
	require.Nil(t, r.Temperature)
	require.Equal(t, "unknown", r.Status)
	require.Equal(t, time.UTC, r.Timestamp.Location())
	require.True(t, r.Timestamp.Equal(at))

	zero := 0.0
	r = NewReading(&zero, "ok", at)
	require.NotNil(t, r.Temperature)
	require.Equal(t, 0.0, *r.Temperature)
}
