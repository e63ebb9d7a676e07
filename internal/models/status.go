package models

// Status is the closed vocabulary of device states. Devices may send any string;
// ParseStatus folds unrecognized values into StatusUnknown for display.
type Status string

const (
	StatusBLE         Status = "ble"
	StatusWiFi        Status = "wifi"
	StatusOK          Status = "ok"
	StatusOffline     Status = "offline"
	StatusNoData      Status = "no_data"
	StatusSensorError Status = "erreur_capteur"
	StatusUnknown     Status = "unknown"
)

// ParseStatus maps a raw status string onto the known vocabulary.
func ParseStatus(raw string) Status {
	switch s := Status(raw); s {
	case StatusBLE, StatusWiFi, StatusOK, StatusOffline, StatusNoData, StatusSensorError, StatusUnknown:
		return s
	default:
		return StatusUnknown
	}
}

// Label returns the human readable text shown to viewers.
func (s Status) Label() string {
	switch s {
	case StatusBLE:
		return "Waiting for Bluetooth provisioning"
	case StatusWiFi:
		return "Connecting to Wi-Fi"
	case StatusOK:
		return "Online"
	case StatusOffline:
		return "Offline"
	case StatusNoData:
		return "No data received yet"
	case StatusSensorError:
		return "Sensor error"
	default:
		return "Unknown state"
	}
}

// Color returns the display colour associated with the status.
func (s Status) Color() string {
	switch s {
	case StatusOK:
		return "green"
	case StatusBLE, StatusWiFi:
		return "blue"
	case StatusSensorError:
		return "orange"
	case StatusOffline:
		return "red"
	default:
		return "gray"
	}
}
