package movement

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/movement"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	officeLat = 12.9716
	officeLng = 77.5946
)

func northOf(lat, d float64) float64 {
	return lat + (d/6371000)*(180/math.Pi)
}

type fakeSessionRepo struct {
	sessions []attendance.Session
}

func (f *fakeSessionRepo) Create(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeSessionRepo) ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]attendance.Session, error) {
	var out []attendance.Session
	for _, s := range f.sessions {
		if s.UserID == userID && !s.Timestamp.Before(start) && s.Timestamp.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListUserIDsBetween(ctx context.Context, start, end time.Time) ([]string, error) {
	return nil, nil
}

type fakeUserRepo struct{}

func (fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return user.User{ID: id, Name: "Asha", Email: "asha@example.com", Role: user.RoleEmployee, IsActive: true}, nil
}

func (fakeUserRepo) ListAdmins(ctx context.Context) ([]user.User, error) {
	return nil, nil
}

type fakeSettings struct {
	snap settings.Snapshot
}

func (f fakeSettings) Snapshot(ctx context.Context) (settings.Snapshot, error) {
	return f.snap, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	alerts []movement.Alert
	err    error
}

func (d *recordingDispatcher) Enqueue(a movement.Alert) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.alerts = append(d.alerts, a)
	return nil
}

type failingCooldown struct{}

func (failingCooldown) TryAcquire(context.Context, string, time.Time, time.Duration) (bool, error) {
	return false, errors.New("store down")
}

func checkedInAt(ts time.Time) *fakeSessionRepo {
	return &fakeSessionRepo{sessions: []attendance.Session{{
		ID: "s1", UserID: "u1", Type: attendance.SessionTypeCheckIn,
		Timestamp: ts, Latitude: officeLat, Longitude: officeLng,
	}}}
}

func ping(lat, lng float64) attendance.PingRequest {
	return attendance.PingRequest{UserID: "u1", Latitude: &lat, Longitude: &lng}
}

func newTestMonitor(repo *fakeSessionRepo, snap settings.Snapshot, cooldown movement.CooldownStore, d *recordingDispatcher, clock *time.Time) *MonitorServiceImpl {
	return NewMonitorService(repo, fakeUserRepo{}, fakeSettings{snap: snap}, cooldown, d, time.Hour,
		WithClock(func() time.Time { return *clock }))
}

func TestEvaluatePing_CooldownDeduplicates(t *testing.T) {
	ctx := context.Background()
	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, utils.BusinessLocation)
	now := checkIn.Add(time.Hour)
	d := &recordingDispatcher{}
	m := newTestMonitor(checkedInAt(checkIn), settings.DefaultSnapshot(), NewMemoryCooldownStore(time.Hour), d, &now)
	far := ping(northOf(officeLat, 800), officeLng)

	res, err := m.EvaluatePing(ctx, far)
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusAlerted, res.Status)
	assert.Equal(t, 800, *res.DistanceM)
	assert.Equal(t, 500, res.ThresholdM)

	now = now.Add(10 * time.Minute)
	res, err = m.EvaluatePing(ctx, far)
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusAlreadyAlerted, res.Status)
	assert.Len(t, d.alerts, 1)

	now = now.Add(60 * time.Minute) // 70 minutes after the first alert
	res, err = m.EvaluatePing(ctx, far)
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusAlerted, res.Status)
	require.Len(t, d.alerts, 2)

	a := d.alerts[0]
	assert.Equal(t, "u1", a.UserID)
	assert.Equal(t, "Asha", a.UserName)
	assert.Equal(t, movement.AlertSourcePing, a.Source)
	assert.Equal(t, 800, a.DistanceM)
}

func TestEvaluatePing_WithinThreshold(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, utils.BusinessLocation)
	now := checkIn.Add(time.Hour)
	d := &recordingDispatcher{}
	m := newTestMonitor(checkedInAt(checkIn), settings.DefaultSnapshot(), NewMemoryCooldownStore(time.Hour), d, &now)

	res, err := m.EvaluatePing(context.Background(), ping(northOf(officeLat, 200), officeLng))
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusOK, res.Status)
	assert.Empty(t, d.alerts)
}

func TestEvaluatePing_NotCheckedIn(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, utils.BusinessLocation)
	now := checkIn.Add(time.Hour)
	d := &recordingDispatcher{}

	empty := &fakeSessionRepo{}
	m := newTestMonitor(empty, settings.DefaultSnapshot(), NewMemoryCooldownStore(time.Hour), d, &now)
	res, err := m.EvaluatePing(context.Background(), ping(northOf(officeLat, 900), officeLng))
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusNotCheckedIn, res.Status)

	out := checkedInAt(checkIn)
	out.sessions = append(out.sessions, attendance.Session{
		UserID: "u1", Type: attendance.SessionTypeCheckOut, Timestamp: checkIn.Add(30 * time.Minute),
	})
	m = newTestMonitor(out, settings.DefaultSnapshot(), NewMemoryCooldownStore(time.Hour), d, &now)
	res, err = m.EvaluatePing(context.Background(), ping(northOf(officeLat, 900), officeLng))
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusNotCheckedIn, res.Status)

	// Yesterday's open check-in does not count.
	now = now.Add(24 * time.Hour)
	m = newTestMonitor(checkedInAt(checkIn), settings.DefaultSnapshot(), NewMemoryCooldownStore(time.Hour), d, &now)
	res, err = m.EvaluatePing(context.Background(), ping(northOf(officeLat, 900), officeLng))
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusNotCheckedIn, res.Status)
	assert.Empty(t, d.alerts)
}

func TestEvaluatePing_Disabled(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, utils.BusinessLocation)
	now := checkIn.Add(time.Hour)
	d := &recordingDispatcher{}
	snap := settings.DefaultSnapshot()
	snap.MovementAlertEnabled = false

	m := newTestMonitor(checkedInAt(checkIn), snap, NewMemoryCooldownStore(time.Hour), d, &now)
	res, err := m.EvaluatePing(context.Background(), ping(northOf(officeLat, 900), officeLng))
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusDisabled, res.Status)
	assert.Empty(t, d.alerts)
}

func TestEvaluatePing_CustomThreshold(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, utils.BusinessLocation)
	now := checkIn.Add(time.Hour)
	d := &recordingDispatcher{}
	snap := settings.DefaultSnapshot()
	snap.MovementAlertDistanceM = 100

	m := newTestMonitor(checkedInAt(checkIn), snap, NewMemoryCooldownStore(time.Hour), d, &now)
	res, err := m.EvaluatePing(context.Background(), ping(northOf(officeLat, 200), officeLng))
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusAlerted, res.Status)
	assert.Len(t, d.alerts, 1)
}

func TestEvaluatePing_CooldownFailureSuppresses(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, utils.BusinessLocation)
	now := checkIn.Add(time.Hour)
	d := &recordingDispatcher{}

	m := newTestMonitor(checkedInAt(checkIn), settings.DefaultSnapshot(), failingCooldown{}, d, &now)
	res, err := m.EvaluatePing(context.Background(), ping(northOf(officeLat, 900), officeLng))
	require.NoError(t, err)
	assert.Equal(t, movement.PingStatusAlreadyAlerted, res.Status)
	assert.Empty(t, d.alerts)
}

func TestEvaluatePing_ValidatesInput(t *testing.T) {
	now := time.Now()
	m := newTestMonitor(&fakeSessionRepo{}, settings.DefaultSnapshot(), NewMemoryCooldownStore(time.Hour), &recordingDispatcher{}, &now)
	_, err := m.EvaluatePing(context.Background(), attendance.PingRequest{UserID: "u1"})
	assert.ErrorContains(t, err, "latitude is required")
}

func TestEvaluateCheckout(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, utils.BusinessLocation)
	now := checkIn.Add(8 * time.Hour)
	d := &recordingDispatcher{}
	repo := checkedInAt(checkIn)
	m := newTestMonitor(repo, settings.DefaultSnapshot(), NewMemoryCooldownStore(time.Hour), d, &now)

	first := repo.sessions[0]
	near := attendance.Session{UserID: "u1", Type: attendance.SessionTypeCheckOut, Timestamp: now, Latitude: northOf(officeLat, 100), Longitude: officeLng}
	m.EvaluateCheckout(context.Background(), "u1", first, near)
	assert.Empty(t, d.alerts)

	far := near
	far.Latitude = northOf(officeLat, 700)
	m.EvaluateCheckout(context.Background(), "u1", first, far)
	m.EvaluateCheckout(context.Background(), "u1", first, far)
	require.Len(t, d.alerts, 2, "checkout alerts bypass the cooldown")
	assert.Equal(t, movement.AlertSourceCheckout, d.alerts[0].Source)
	assert.Equal(t, 700, d.alerts[0].DistanceM)
}

func TestEvaluateCheckout_DispatchFailureIsSwallowed(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, utils.BusinessLocation)
	now := checkIn.Add(8 * time.Hour)
	d := &recordingDispatcher{err: movement.ErrQueueFull}
	repo := checkedInAt(checkIn)
	m := newTestMonitor(repo, settings.DefaultSnapshot(), NewMemoryCooldownStore(time.Hour), d, &now)

	far := attendance.Session{UserID: "u1", Type: attendance.SessionTypeCheckOut, Timestamp: now, Latitude: northOf(officeLat, 700), Longitude: officeLng}
	assert.NotPanics(t, func() {
		m.EvaluateCheckout(context.Background(), "u1", repo.sessions[0], far)
	})
}
