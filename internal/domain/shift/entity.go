package shift

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

const (
	DefaultStartTime        = "09:00"
	DefaultEndTime          = "18:00"
	DefaultGraceMinutes     = 10
	DefaultStandardWorkMins = 480
)

// Shift holds the working hours used for lateness and overtime.
// StartTime and EndTime are HH:mm in the business timezone.
type Shift struct {
	ID               string
	Name             string
	StartTime        string
	EndTime          string
	GraceMinutes     int
	StandardWorkMins int
	IsDefault        bool
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Default is the shift applied to users without an assigned or default shift.
func Default() Shift {
	return Shift{
		Name:             "Default",
		StartTime:        DefaultStartTime,
		EndTime:          DefaultEndTime,
		GraceMinutes:     DefaultGraceMinutes,
		StandardWorkMins: DefaultStandardWorkMins,
		IsDefault:        true,
		IsActive:         true,
	}
}

// LateThresholdMinutes returns start time plus grace as minutes after midnight.
func (s Shift) LateThresholdMinutes() (int, error) {
	start, err := utils.ParseClock(s.StartTime)
	if err != nil {
		return 0, fmt.Errorf("shift %q start time: %w", s.Name, err)
	}
	return start + s.GraceMinutes, nil
}

// IsLate reports whether a check-in is strictly after the late threshold.
// Seconds count: 09:10:00 is on time for a 09:10 threshold, 09:10:01 is late.
func (s Shift) IsLate(checkIn time.Time) (bool, error) {
	threshold, err := s.LateThresholdMinutes()
	if err != nil {
		return false, err
	}
	deadline := utils.BusinessDate(checkIn).Add(time.Duration(threshold) * time.Minute)
	return checkIn.After(deadline), nil
}

// OvertimeMinutes returns the work beyond the standard day, never negative.
func (s Shift) OvertimeMinutes(workMins int) int {
	standard := s.StandardWorkMins
	if standard <= 0 {
		standard = DefaultStandardWorkMins
	}
	return max(0, workMins-standard)
}
