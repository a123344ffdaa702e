package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummary_Classification(t *testing.T) {
	cases := []struct {
		name     string
		sessions []attendance.Session
		want     attendance.Status
	}{
		{"on time full day", sessionsAt(at(9, 0), at(18, 0)), attendance.StatusPresent},
		{"late wins over half day", sessionsAt(at(9, 30), at(11, 0)), attendance.StatusLate},
		{"short day", sessionsAt(at(9, 0), at(12, 59)), attendance.StatusHalfDay},
		{"exactly four hours", sessionsAt(at(9, 0), at(13, 0)), attendance.StatusPresent},
		{"checked in, no work yet", sessionsAt(at(9, 5)), attendance.StatusPresent},
		{"exactly at threshold", sessionsAt(at(9, 10)), attendance.StatusPresent},
		{"one second past threshold", sessionsAt(at(9, 10).Add(time.Second)), attendance.StatusLate},
		{"within the threshold minute", sessionsAt(at(9, 10).Add(45 * time.Second)), attendance.StatusLate},
		{"end of the threshold minute", sessionsAt(at(9, 10).Add(59 * time.Second)), attendance.StatusLate},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := BuildSummary("u1", at(0, 0), c.sessions, shift.Default())
			assert.Equal(t, c.want, s.Status)
		})
	}
}

func TestBuildSummary_Fields(t *testing.T) {
	sessions := sessionsAt(at(8, 45), at(13, 0), at(13, 30), at(19, 15))

	s := BuildSummary("u1", at(20, 0), sessions, shift.Default())

	assert.Equal(t, "u1", s.UserID)
	assert.True(t, s.Date.Equal(at(0, 0)))
	require.NotNil(t, s.FirstCheckIn)
	assert.True(t, s.FirstCheckIn.Equal(at(8, 45)))
	require.NotNil(t, s.LastCheckOut)
	assert.True(t, s.LastCheckOut.Equal(at(19, 15)))
	assert.Equal(t, 600, s.TotalWorkMins)
	assert.Equal(t, 30, s.TotalBreakMins)
	assert.Equal(t, 120, s.OvertimeMins)
	assert.Equal(t, 4, s.SessionCount)
}

func TestBuildSummary_InvalidShiftFallsBack(t *testing.T) {
	broken := shift.Shift{Name: "Broken", StartTime: "nine", GraceMinutes: 0, StandardWorkMins: 60}

	s := BuildSummary("u1", at(0, 0), sessionsAt(at(9, 5), at(18, 0)), broken)

	assert.Equal(t, attendance.StatusPresent, s.Status)
	assert.Equal(t, 535, s.TotalWorkMins)
	assert.Equal(t, 55, s.OvertimeMins)
}

func TestBuildSummary_OpenDayHasNoLastCheckOut(t *testing.T) {
	s := BuildSummary("u1", at(0, 0), sessionsAt(at(9, 0)), shift.Default())
	assert.Nil(t, s.LastCheckOut)
	assert.Equal(t, 0, s.TotalWorkMins)
	assert.Equal(t, 1, s.SessionCount)
}
