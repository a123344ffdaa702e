package attendance

import (
	"context"
	"time"
)

// SessionRepository defines data access for attendance sessions.
type SessionRepository interface {
	// Create appends a new session. Sessions are never updated.
	Create(ctx context.Context, session Session) (Session, error)

	// ListByUserBetween returns the user's sessions in [start, end) ordered by timestamp ascending.
	ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]Session, error)

	// ListUserIDsBetween returns every user with at least one session in [start, end).
	ListUserIDsBetween(ctx context.Context, start, end time.Time) ([]string, error)
}

// SummaryRepository defines data access for daily summaries.
type SummaryRepository interface {
	// Upsert inserts or replaces the summary keyed by (user_id, date).
	Upsert(ctx context.Context, summary DailySummary) (DailySummary, error)

	// GetByUserAndDate returns nil when no summary exists for that day.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*DailySummary, error)
}

// DayLocker serializes read-validate-write for one (user, business day).
// fn receives a context bound to the storage transaction holding the lock.
type DayLocker interface {
	WithDayLock(ctx context.Context, userID string, day time.Time, fn func(ctx context.Context) error) error
}
