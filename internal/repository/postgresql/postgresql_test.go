package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-backend-go/migrations"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, dsn, database.PoolOptions{MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, migrations.Apply(ctx, db.Pool))

	_, err = db.Exec(ctx, `
		TRUNCATE TABLE movement_alert_cooldowns, notification_preferences, notifications,
			daily_summaries, attendance_sessions, geofences, users, shifts CASCADE
	`)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *database.DB, role user.Role) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(context.Background(),
		`INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)`,
		id, "User "+id[:8], id+"@example.com", string(role))
	require.NoError(t, err)
	return id
}

func day(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, utils.BusinessLocation)
}

func TestSessionRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewSessionRepository(db)
	userID := seedUser(t, db, user.RoleEmployee)

	device := "pixel-8"
	for _, s := range []attendance.Session{
		{UserID: userID, Type: attendance.SessionTypeCheckOut, Timestamp: day(13, 0), Latitude: 12.97, Longitude: 77.59},
		{UserID: userID, Type: attendance.SessionTypeCheckIn, Timestamp: day(9, 0), Latitude: 12.97, Longitude: 77.59, DeviceInfo: &device},
		{UserID: userID, Type: attendance.SessionTypeCheckIn, Timestamp: day(23, 59).Add(2 * time.Minute), Latitude: 12.97, Longitude: 77.59},
	} {
		created, err := repo.Create(ctx, s)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
	}

	start, end := utils.DayRange(day(12, 0))
	sessions, err := repo.ListByUserBetween(ctx, userID, start, end)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, attendance.SessionTypeCheckIn, sessions[0].Type)
	assert.True(t, sessions[0].Timestamp.Equal(day(9, 0)))
	require.NotNil(t, sessions[0].DeviceInfo)
	assert.Equal(t, "pixel-8", *sessions[0].DeviceInfo)

	ids, err := repo.ListUserIDsBetween(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, []string{userID}, ids)
}

func TestSessionRepository_EqualTimestampsKeepInsertOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewSessionRepository(db)
	userID := seedUser(t, db, user.RoleEmployee)

	// One transaction, so created_at is identical for every row.
	types := []attendance.SessionType{
		attendance.SessionTypeCheckIn, attendance.SessionTypeCheckOut,
		attendance.SessionTypeCheckIn, attendance.SessionTypeCheckOut,
		attendance.SessionTypeCheckIn, attendance.SessionTypeCheckOut,
	}
	err := postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
		txCtx := postgresql.WithTx(ctx, tx)
		for _, typ := range types {
			if _, err := repo.Create(txCtx, attendance.Session{
				UserID: userID, Type: typ, Timestamp: day(9, 0), Latitude: 12.97, Longitude: 77.59,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	start, end := utils.DayRange(day(9, 0))
	sessions, err := repo.ListByUserBetween(ctx, userID, start, end)
	require.NoError(t, err)
	require.Len(t, sessions, len(types))
	for i, s := range sessions {
		assert.Equal(t, types[i], s.Type, "session %d", i)
	}

	_, err = attendance.ReplayState(sessions)
	assert.NoError(t, err)
}

func TestSummaryRepository_UpsertIsKeyedByUserAndDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewSummaryRepository(db)
	userID := seedUser(t, db, user.RoleEmployee)

	missing, err := repo.GetByUserAndDate(ctx, userID, day(0, 0))
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := day(9, 0)
	summary := attendance.DailySummary{
		UserID:        userID,
		Date:          day(0, 0),
		FirstCheckIn:  &first,
		TotalWorkMins: 120,
		SessionCount:  2,
		Status:        attendance.StatusHalfDay,
	}
	saved, err := repo.Upsert(ctx, summary)
	require.NoError(t, err)

	summary.TotalWorkMins = 480
	summary.Status = attendance.StatusPresent
	updated, err := repo.Upsert(ctx, summary)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	got, err := repo.GetByUserAndDate(ctx, userID, day(18, 0))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 480, got.TotalWorkMins)
	assert.Equal(t, attendance.StatusPresent, got.Status)
	assert.Equal(t, "2024-03-04", got.Date.Format(utils.DateLayout))
	assert.Nil(t, got.LastCheckOut)
}

func TestDayLocker_SerializesReadValidateWrite(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	locker := postgresql.NewDayLocker(db)
	sessions := postgresql.NewSessionRepository(db)
	userID := seedUser(t, db, user.RoleEmployee)
	start, end := utils.DayRange(day(9, 0))

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = locker.WithDayLock(ctx, userID, day(9, 0), func(ctx context.Context) error {
				existing, err := sessions.ListByUserBetween(ctx, userID, start, end)
				if err != nil {
					return err
				}
				state, err := attendance.ReplayState(existing)
				if err != nil {
					return err
				}
				if _, err := attendance.Transition(state, attendance.SessionTypeCheckIn); err != nil {
					return err
				}
				_, err = sessions.Create(ctx, attendance.Session{
					UserID: userID, Type: attendance.SessionTypeCheckIn, Timestamp: day(9, i),
					Latitude: 12.97, Longitude: 77.59,
				})
				return err
			})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	}
	assert.Equal(t, 1, ok)

	stored, err := sessions.ListByUserBetween(ctx, userID, start, end)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestDayLocker_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	locker := postgresql.NewDayLocker(db)
	sessions := postgresql.NewSessionRepository(db)
	userID := seedUser(t, db, user.RoleEmployee)

	err := locker.WithDayLock(ctx, userID, day(9, 0), func(ctx context.Context) error {
		_, err := sessions.Create(ctx, attendance.Session{
			UserID: userID, Type: attendance.SessionTypeCheckIn, Timestamp: day(9, 0),
			Latitude: 12.97, Longitude: 77.59,
		})
		require.NoError(t, err)
		return attendance.ErrRateLimited
	})
	assert.ErrorIs(t, err, attendance.ErrRateLimited)

	start, end := utils.DayRange(day(9, 0))
	stored, err := sessions.ListByUserBetween(ctx, userID, start, end)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestShiftRepository_GetForUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewShiftRepository(db)
	userID := seedUser(t, db, user.RoleEmployee)

	none, err := repo.GetForUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, none)

	defaultID, assignedID := uuid.NewString(), uuid.NewString()
	_, err = db.Exec(ctx, `
		INSERT INTO shifts (id, name, start_time, end_time, grace_minutes, standard_work_mins, is_default)
		VALUES ($1, 'General', '09:00', '18:00', 10, 480, true),
		       ($2, 'Late', '11:00', '20:00', 5, 480, false)
	`, defaultID, assignedID)
	require.NoError(t, err)

	got, err := repo.GetForUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, defaultID, got.ID)
	assert.Equal(t, "09:00", got.StartTime)

	_, err = db.Exec(ctx, `UPDATE users SET shift_id = $1 WHERE id = $2`, assignedID, userID)
	require.NoError(t, err)

	got, err = repo.GetForUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, assignedID, got.ID)
	assert.Equal(t, "11:00", got.StartTime)
	assert.Equal(t, 5, got.GraceMinutes)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)
	employee := seedUser(t, db, user.RoleEmployee)
	admin := seedUser(t, db, user.RoleAdmin)

	u, err := repo.GetByID(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, u.Role)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.GeofenceEnabled)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	admins, err := repo.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, admin, admins[0].ID)
}

func TestGeoFenceAndSettingsRepositories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO geofences (id, name, latitude, longitude, radius_m, is_active)
		VALUES ($1, 'HQ', 12.9716, 77.5946, 500, true),
		       ($2, 'Old office', 13.0, 77.6, 200, false)
	`, uuid.NewString(), uuid.NewString())
	require.NoError(t, err)

	fences, err := postgresql.NewGeoFenceRepository(db).ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, fences, 1)
	assert.Equal(t, "HQ", fences[0].Name)
	assert.Equal(t, 500, fences[0].RadiusM)

	values, err := postgresql.NewAppConfigRepository(db).GetAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, values, "MOVEMENT_ALERT_DISTANCE")
}

func TestCooldownRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewCooldownRepository(db)
	userID := seedUser(t, db, user.RoleEmployee)

	ok, err := repo.TryAcquire(ctx, userID, day(10, 0), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TryAcquire(ctx, userID, day(10, 10), time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.TryAcquire(ctx, userID, day(11, 10), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	purged, err := repo.PurgeExpired(ctx, day(12, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestNotificationRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewNotificationRepository(db)
	userID := seedUser(t, db, user.RoleEmployee)

	link := "https://maps.example.com"
	require.NoError(t, repo.CreateBatch(ctx, []*notification.Notification{
		{RecipientID: userID, Type: notification.TypeAttendanceCheckIn, Title: "Checked in", Message: "09:00"},
		{RecipientID: userID, Type: notification.TypeMovementAlert, Title: "Moved", Message: "800m", Link: &link,
			Data: map[string]interface{}{"distance_m": 800}},
	}))

	list, total, err := repo.GetByUserID(ctx, userID, 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)

	count, err := repo.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.MarkAllAsRead(ctx, userID))
	count, err = repo.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = repo.GetPreference(ctx, userID, notification.TypeMovementAlert)
	assert.ErrorIs(t, err, notification.ErrPreferenceNotFound)

	require.NoError(t, repo.UpsertPreference(ctx, &notification.NotificationPreference{
		UserID: userID, NotificationType: notification.TypeMovementAlert, EmailEnabled: true, PushEnabled: false,
	}))
	pref, err := repo.GetPreference(ctx, userID, notification.TypeMovementAlert)
	require.NoError(t, err)
	assert.False(t, pref.Enabled(notification.ChannelPush))
	assert.True(t, pref.Enabled(notification.ChannelEmail))

	got, err := repo.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.RecipientID)
}
