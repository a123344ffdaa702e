package movement

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// AlertDispatcher delivers alerts out of band. Enqueue never blocks.
type AlertDispatcher interface {
	Enqueue(alert Alert) error
}

type MonitorService interface {
	// EvaluatePing checks a periodic location ping against the day's first check-in.
	EvaluatePing(ctx context.Context, req attendance.PingRequest) (PingResult, error)

	// EvaluateCheckout compares a checkout with the day's first check-in and
	// alerts at most once. Failures are logged, never returned to the caller.
	EvaluateCheckout(ctx context.Context, userID string, firstCheckIn, checkout attendance.Session)
}
