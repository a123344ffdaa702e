package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// ComputeDurations pairs an ordered, alternating session list into
// (CHECK_IN, CHECK_OUT) tuples. Work is the sum of every closed pair, break is
// the sum of every CHECK_OUT -> next CHECK_IN gap. A trailing open CHECK_IN
// counts towards neither. Totals are truncated to whole minutes.
func ComputeDurations(sessions []attendance.Session) (workMins, breakMins int) {
	work, brk := sumDurations(sessions)
	return int(work / time.Minute), int(brk / time.Minute)
}

// ComputeRunningDurations is ComputeDurations with an open CHECK_IN counted up to now.
func ComputeRunningDurations(sessions []attendance.Session, now time.Time) (workMins, breakMins int) {
	work, brk := sumDurations(sessions)
	if n := len(sessions); n > 0 && sessions[n-1].Type == attendance.SessionTypeCheckIn {
		if open := now.Sub(sessions[n-1].Timestamp); open > 0 {
			work += open
		}
	}
	return int(work / time.Minute), int(brk / time.Minute)
}

func sumDurations(sessions []attendance.Session) (work, brk time.Duration) {
	var openIn, lastOut *time.Time

	for i := range sessions {
		ts := sessions[i].Timestamp
		switch sessions[i].Type {
		case attendance.SessionTypeCheckIn:
			if lastOut != nil {
				brk += ts.Sub(*lastOut)
				lastOut = nil
			}
			openIn = &ts
		case attendance.SessionTypeCheckOut:
			if openIn != nil {
				work += ts.Sub(*openIn)
				openIn = nil
			}
			lastOut = &ts
		}
	}

	return work, brk
}
