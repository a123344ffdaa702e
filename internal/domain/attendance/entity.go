package attendance

import (
	"time"
)

type SessionType string

const (
	SessionTypeCheckIn  SessionType = "CHECK_IN"
	SessionTypeCheckOut SessionType = "CHECK_OUT"
)

var SessionTypeValues = []string{
	string(SessionTypeCheckIn),
	string(SessionTypeCheckOut),
}

func (t SessionType) IsValid() bool {
	return t == SessionTypeCheckIn || t == SessionTypeCheckOut
}

// Session is a single check-in or check-out event. Sessions are append-only.
type Session struct {
	ID         string
	UserID     string
	Type       SessionType
	Timestamp  time.Time
	Latitude   float64
	Longitude  float64
	Address    *string
	DeviceInfo *string
	CreatedAt  time.Time
}

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusHalfDay Status = "HALF_DAY"
	StatusAbsent  Status = "ABSENT"
	StatusOnLeave Status = "ON_LEAVE"
)

// DailySummary is the derived per user per business day record.
type DailySummary struct {
	ID             string
	UserID         string
	Date           time.Time // business-local midnight
	FirstCheckIn   *time.Time
	LastCheckOut   *time.Time
	TotalWorkMins  int
	TotalBreakMins int
	OvertimeMins   int
	SessionCount   int
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SameFields reports whether two summaries carry identical derived values.
func (s DailySummary) SameFields(o DailySummary) bool {
	return s.UserID == o.UserID &&
		s.Date.Equal(o.Date) &&
		timePtrEqual(s.FirstCheckIn, o.FirstCheckIn) &&
		timePtrEqual(s.LastCheckOut, o.LastCheckOut) &&
		s.TotalWorkMins == o.TotalWorkMins &&
		s.TotalBreakMins == o.TotalBreakMins &&
		s.OvertimeMins == o.OvertimeMins &&
		s.SessionCount == o.SessionCount &&
		s.Status == o.Status
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// FirstCheckIn returns the earliest CHECK_IN of a timestamp-ordered list.
func FirstCheckIn(sessions []Session) *Session {
	for i := range sessions {
		if sessions[i].Type == SessionTypeCheckIn {
			return &sessions[i]
		}
	}
	return nil
}

// LastCheckOut returns the latest CHECK_OUT of a timestamp-ordered list.
func LastCheckOut(sessions []Session) *Session {
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Type == SessionTypeCheckOut {
			return &sessions[i]
		}
	}
	return nil
}
