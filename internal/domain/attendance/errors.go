package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Alternation errors. Both duplicate errors match ErrDuplicateAction.
	ErrDuplicateAction   = errors.New("duplicate attendance action")
	ErrAlreadyCheckedIn  = fmt.Errorf("%w: you are already checked in", ErrDuplicateAction)
	ErrAlreadyCheckedOut = fmt.Errorf("%w: you are already checked out", ErrDuplicateAction)
	ErrNoCheckInYet      = errors.New("you have not checked in yet today")

	ErrInvalidSessionType = errors.New("invalid session type")
	ErrRateLimited        = errors.New("too many attendance actions, please wait a moment")
	ErrGeofenceViolation  = errors.New("outside the allowed attendance area")
	ErrSummaryNotFound    = errors.New("daily summary not found")
)

// GeofenceViolationError rejects an action taken outside every active geofence.
type GeofenceViolationError struct {
	NearestDistance int
	NearestFence    string
}

func (e *GeofenceViolationError) Error() string {
	return fmt.Sprintf("you are %dm away from the nearest allowed location", e.NearestDistance)
}

func (e *GeofenceViolationError) Is(target error) bool {
	return target == ErrGeofenceViolation
}
