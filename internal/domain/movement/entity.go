package movement

import "time"

type PingStatus string

const (
	PingStatusNotCheckedIn   PingStatus = "NOT_CHECKED_IN"
	PingStatusDisabled       PingStatus = "DISABLED"
	PingStatusOK             PingStatus = "OK"
	PingStatusAlerted        PingStatus = "ALERTED"
	PingStatusAlreadyAlerted PingStatus = "ALREADY_ALERTED"
)

// AlertSource tells where a movement alert originated.
type AlertSource string

const (
	AlertSourcePing     AlertSource = "ping"
	AlertSourceCheckout AlertSource = "checkout"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Alert describes a user who drifted beyond the allowed distance from their
// first check-in of the day.
type Alert struct {
	UserID     string
	UserName   string
	UserEmail  string
	Source     AlertSource
	Origin     Point
	Current    Point
	DistanceM  int
	ThresholdM int
	OccurredAt time.Time
}
