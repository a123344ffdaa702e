package shift

import "context"

type ShiftRepository interface {
	// GetForUser returns the user's assigned active shift, else the active
	// default shift, else nil.
	GetForUser(ctx context.Context, userID string) (*Shift, error)
}
