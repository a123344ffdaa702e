package settings

import (
	"log/slog"
	"strconv"
	"strings"
)

// Key is a known app_config key.
type Key string

const (
	KeyGeofenceEnforce       Key = "GEOFENCE_ENFORCE"
	KeyMovementAlertEnabled  Key = "MOVEMENT_ALERT_ENABLED"
	KeyMovementAlertDistance Key = "MOVEMENT_ALERT_DISTANCE"
)

const DefaultMovementAlertDistanceM = 500

// Snapshot is the typed view of app_config taken once per request.
type Snapshot struct {
	GeofenceEnforce        bool
	MovementAlertEnabled   bool
	MovementAlertDistanceM float64
}

func DefaultSnapshot() Snapshot {
	return Snapshot{
		GeofenceEnforce:        false,
		MovementAlertEnabled:   true,
		MovementAlertDistanceM: DefaultMovementAlertDistanceM,
	}
}

// ParseSnapshot builds a Snapshot from raw key/value rows. Unknown keys are
// ignored and malformed values keep their default.
func ParseSnapshot(values map[string]string) Snapshot {
	s := DefaultSnapshot()

	if v, ok := values[string(KeyGeofenceEnforce)]; ok {
		// Only the literal "true" turns enforcement on.
		s.GeofenceEnforce = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	if v, ok := values[string(KeyMovementAlertEnabled)]; ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			slog.Warn("Invalid app config value, using default", "key", KeyMovementAlertEnabled, "value", v)
		} else {
			s.MovementAlertEnabled = b
		}
	}

	if v, ok := values[string(KeyMovementAlertDistance)]; ok {
		d, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || d <= 0 {
			slog.Warn("Invalid app config value, using default", "key", KeyMovementAlertDistance, "value", v)
		} else {
			s.MovementAlertDistanceM = d
		}
	}

	return s
}
