package geofence

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

// CheckAdmission reports whether the point lies within radius of at least one
// fence. With no fences every point is allowed.
func CheckAdmission(lat, lng float64, fences []geofence.GeoFence) geofence.Admission {
	if len(fences) == 0 {
		return geofence.Admission{Allowed: true}
	}

	var (
		allowed bool
		nearest = math.Inf(1)
		name    string
	)
	for _, f := range fences {
		d := utils.CalculateHaversineDistance(lat, lng, f.Latitude, f.Longitude)
		if d <= float64(f.RadiusM) {
			allowed = true
		}
		if d < nearest {
			nearest = d
			name = f.Name
		}
	}

	return geofence.Admission{
		Allowed:         allowed,
		NearestDistance: utils.RoundMeters(nearest),
		NearestFence:    name,
	}
}

type Guard struct {
	fenceRepo geofence.GeoFenceRepository
}

func NewGuard(fenceRepo geofence.GeoFenceRepository) *Guard {
	return &Guard{fenceRepo: fenceRepo}
}

// Enabled reports whether admission control applies to u under snap. A
// per-user opt-out wins over the global flag.
func Enabled(u user.User, snap settings.Snapshot) bool {
	return snap.GeofenceEnforce && !u.GeofenceOptedOut()
}

// Enforce returns *attendance.GeofenceViolationError when u is outside every
// active fence and geofencing applies to them.
func (g *Guard) Enforce(ctx context.Context, u user.User, snap settings.Snapshot, lat, lng float64) error {
	if !Enabled(u, snap) {
		return nil
	}

	fences, err := g.fenceRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load geofences: %w", err)
	}

	adm := CheckAdmission(lat, lng, fences)
	if adm.Allowed {
		return nil
	}

	slog.Info("Geofence admission denied",
		"user_id", u.ID,
		"nearest_fence", adm.NearestFence,
		"distance_m", adm.NearestDistance,
	)
	return &attendance.GeofenceViolationError{
		NearestDistance: adm.NearestDistance,
		NearestFence:    adm.NearestFence,
	}
}
