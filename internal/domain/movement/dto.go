package movement

// PingResult is returned to the client after a location ping.
type PingResult struct {
	Status     PingStatus `json:"status"`
	DistanceM  *int       `json:"distance_m,omitempty"`
	ThresholdM int        `json:"threshold_m,omitempty"`
	Message    string     `json:"message"`
}
