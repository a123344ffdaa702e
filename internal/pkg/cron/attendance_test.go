package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	attendance.SessionRepository
	ids        []string
	start, end time.Time
}

func (f *fakeSessions) ListUserIDsBetween(ctx context.Context, start, end time.Time) ([]string, error) {
	f.start, f.end = start, end
	return f.ids, nil
}

type fakeRecomputer struct {
	calls []string
	fail  map[string]error
}

func (f *fakeRecomputer) RecomputeSummary(ctx context.Context, userID string, date time.Time) (attendance.DailySummary, error) {
	f.calls = append(f.calls, userID+"|"+date.Format(utils.DateLayout))
	if err := f.fail[userID]; err != nil {
		return attendance.DailySummary{}, err
	}
	return attendance.DailySummary{UserID: userID, Date: date}, nil
}

type fakePurger struct {
	before time.Time
}

func (f *fakePurger) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	f.before = before
	return 3, nil
}

func TestRecomputeOpenSummaries(t *testing.T) {
	now := time.Date(2024, 3, 4, 15, 0, 0, 0, utils.BusinessLocation)
	sessions := &fakeSessions{ids: []string{"u1", "u2", "u3"}}
	recomputer := &fakeRecomputer{fail: map[string]error{"u2": errors.New("db down")}}

	jobs := NewAttendanceJobs(sessions, recomputer, nil, time.Hour)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.RecomputeOpenSummaries(context.Background()))

	assert.Equal(t, []string{"u1|2024-03-04", "u2|2024-03-04", "u3|2024-03-04"}, recomputer.calls)
	assert.True(t, sessions.start.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, utils.BusinessLocation)))
	assert.Equal(t, 24*time.Hour, sessions.end.Sub(sessions.start))
}

func TestPurgeMovementCooldowns(t *testing.T) {
	now := time.Date(2024, 3, 4, 15, 0, 0, 0, utils.BusinessLocation)
	purger := &fakePurger{}

	jobs := NewAttendanceJobs(&fakeSessions{}, &fakeRecomputer{}, purger, time.Hour)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.PurgeMovementCooldowns(context.Background()))
	assert.True(t, purger.before.Equal(now.Add(-time.Hour)))
}

func TestRegisterJobs_SkipsPurgeWithoutStore(t *testing.T) {
	s := NewScheduler()
	NewAttendanceJobs(&fakeSessions{}, &fakeRecomputer{}, nil, time.Hour).RegisterJobs(s)
	assert.Len(t, s.jobs, 1)

	s = NewScheduler()
	NewAttendanceJobs(&fakeSessions{}, &fakeRecomputer{}, &fakePurger{}, time.Hour).RegisterJobs(s)
	assert.Len(t, s.jobs, 2)
}
