package postgresql

import "github.com/google/uuid"

// newID returns a UUIDv7, falling back to v4 if the clock source fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
