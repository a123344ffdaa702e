package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func sessionsAt(times ...time.Time) []attendance.Session {
	out := make([]attendance.Session, len(times))
	for i, ts := range times {
		typ := attendance.SessionTypeCheckIn
		if i%2 == 1 {
			typ = attendance.SessionTypeCheckOut
		}
		out[i] = attendance.Session{UserID: "u1", Type: typ, Timestamp: ts}
	}
	return out
}

func TestComputeDurations(t *testing.T) {
	cases := []struct {
		name      string
		sessions  []attendance.Session
		wantWork  int
		wantBreak int
	}{
		{"empty", nil, 0, 0},
		{"open check-in only", sessionsAt(at(9, 0)), 0, 0},
		{"single pair", sessionsAt(at(9, 0), at(17, 0)), 480, 0},
		{"split day", sessionsAt(at(9, 0), at(13, 0), at(14, 0), at(18, 0)), 480, 60},
		{"break then open", sessionsAt(at(9, 0), at(12, 0), at(12, 45)), 180, 45},
		{"sub-minute truncated", sessionsAt(at(9, 0), at(9, 0).Add(89*time.Second)), 1, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			work, brk := ComputeDurations(c.sessions)
			assert.Equal(t, c.wantWork, work)
			assert.Equal(t, c.wantBreak, brk)
		})
	}
}

func TestComputeRunningDurations(t *testing.T) {
	sessions := sessionsAt(at(9, 0), at(12, 0), at(13, 0))

	work, brk := ComputeRunningDurations(sessions, at(14, 30))
	assert.Equal(t, 270, work)
	assert.Equal(t, 60, brk)

	work, _ = ComputeRunningDurations(sessions[:2], at(14, 30))
	assert.Equal(t, 180, work)
}
