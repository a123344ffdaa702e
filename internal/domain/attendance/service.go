package attendance

import (
	"context"
	"time"
)

// AttendanceService defines the attendance session engine.
type AttendanceService interface {
	// RecordSession validates and appends a check-in or check-out, then recomputes the day's summary.
	RecordSession(ctx context.Context, req RecordSessionRequest) (RecordSessionResponse, error)

	// GetTodaySessions returns the sessions and summary of a business day (YYYY-MM-DD, empty for today).
	GetTodaySessions(ctx context.Context, userID string, date string) (TodaySessionsResponse, error)

	// GetTodayStatus returns the current day state and running totals.
	GetTodayStatus(ctx context.Context, userID string) (TodayStatusResponse, error)

	// RecomputeSummary re-aggregates one day from its sessions. Idempotent.
	RecomputeSummary(ctx context.Context, userID string, date time.Time) (DailySummary, error)
}
