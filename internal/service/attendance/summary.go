package attendance

import (
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

const halfDayThresholdMins = 240

// BuildSummary derives the daily summary from one day's ordered sessions.
// The result depends only on its inputs, so re-running it is idempotent.
func BuildSummary(userID string, date time.Time, sessions []attendance.Session, sh shift.Shift) attendance.DailySummary {
	if _, err := sh.LateThresholdMinutes(); err != nil {
		slog.Warn("Invalid shift configuration, using default shift", "shift_id", sh.ID, "error", err)
		sh = shift.Default()
	}

	workMins, breakMins := ComputeDurations(sessions)

	summary := attendance.DailySummary{
		UserID:         userID,
		Date:           utils.BusinessDate(date),
		TotalWorkMins:  workMins,
		TotalBreakMins: breakMins,
		OvertimeMins:   sh.OvertimeMinutes(workMins),
		SessionCount:   len(sessions),
	}

	if first := attendance.FirstCheckIn(sessions); first != nil {
		ts := first.Timestamp
		summary.FirstCheckIn = &ts
	}
	if last := attendance.LastCheckOut(sessions); last != nil {
		ts := last.Timestamp
		summary.LastCheckOut = &ts
	}

	summary.Status = classify(summary, sh)
	return summary
}

// classify applies LATE, then HALF_DAY, then PRESENT; first match wins.
func classify(s attendance.DailySummary, sh shift.Shift) attendance.Status {
	if s.FirstCheckIn != nil {
		if late, _ := sh.IsLate(*s.FirstCheckIn); late {
			return attendance.StatusLate
		}
	}
	if s.TotalWorkMins > 0 && s.TotalWorkMins < halfDayThresholdMins {
		return attendance.StatusHalfDay
	}
	return attendance.StatusPresent
}
