package geofence

import "time"

// GeoFence is a circular admission boundary.
type GeoFence struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	RadiusM   int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Admission is the result of checking a point against the active fences.
type Admission struct {
	Allowed bool
	// NearestDistance is the rounded distance in meters to the closest fence
	// center. Zero when there are no fences.
	NearestDistance int
	NearestFence    string
}
