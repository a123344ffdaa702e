package geofence

import "context"

type GeoFenceRepository interface {
	ListActive(ctx context.Context) ([]GeoFence, error)
}
