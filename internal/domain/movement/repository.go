package movement

import (
	"context"
	"time"
)

// CooldownStore deduplicates movement alerts per user.
type CooldownStore interface {
	// TryAcquire marks an alert for userID at now and returns true, unless an
	// alert was already marked within ttl, in which case it returns false.
	TryAcquire(ctx context.Context, userID string, now time.Time, ttl time.Duration) (bool, error)
}

// CooldownPurger is implemented by stores that keep expired entries around.
type CooldownPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
