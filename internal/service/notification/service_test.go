package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	notification.Repository
	mu       sync.Mutex
	created  []*notification.Notification
	disabled map[notification.NotificationType]bool
}

func (f *fakeRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeRepo) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, ns...)
	return nil
}

func (f *fakeRepo) GetPreference(ctx context.Context, userID string, t notification.NotificationType) (*notification.NotificationPreference, error) {
	if f.disabled[t] {
		return &notification.NotificationPreference{UserID: userID, NotificationType: t, EmailEnabled: true}, nil
	}
	return nil, notification.ErrPreferenceNotFound
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, notification.ErrNotificationNotFound
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func TestQueueNotification_FlushesOnStop(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: time.Hour, WorkerCount: 1})

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
			RecipientID: "u1",
			Type:        notification.TypeAttendanceCheckIn,
			Title:       "Checked in",
		}))
	}
	svc.Stop()

	assert.Equal(t, 3, repo.count())
	for _, n := range repo.created {
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, "u1", n.RecipientID)
	}
}

func TestQueueNotification_PublishesToSubscribers(t *testing.T) {
	repo := &fakeRepo{}
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, Config{BatchSize: 1, WorkerCount: 1})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, cleanup := svc.Subscribe(ctx, "u1")
	defer cleanup()

	link := "/attendance/today"
	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Type:        notification.TypeMovementAlert,
		Title:       "Movement detected",
		Link:        &link,
	}))

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "Movement detected", ev.Data.Title)
		require.NotNil(t, ev.Data.Link)
		assert.Equal(t, link, *ev.Data.Link)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification event received")
	}
}

func TestQueueNotification_RespectsPreferences(t *testing.T) {
	repo := &fakeRepo{disabled: map[notification.NotificationType]bool{notification.TypeAttendanceCheckOut: true}}
	svc := NewNotificationService(repo, sse.NewHub(), Config{WorkerCount: 1})

	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Type:        notification.TypeAttendanceCheckOut,
	}))
	svc.Stop()
	assert.Zero(t, repo.count())
}

func TestQueueNotification_RejectsUnknownType(t *testing.T) {
	svc := NewNotificationService(&fakeRepo{}, sse.NewHub(), Config{WorkerCount: 1})
	defer svc.Stop()

	err := svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Type:        "payroll_generated",
	})
	assert.ErrorIs(t, err, notification.ErrInvalidNotificationType)
}

func TestIsEnabled_FallsBackToDefaults(t *testing.T) {
	repo := &fakeRepo{disabled: map[notification.NotificationType]bool{notification.TypeMovementAlert: true}}
	svc := NewNotificationService(repo, sse.NewHub(), Config{WorkerCount: 1})
	defer svc.Stop()
	ctx := context.Background()

	tests := []struct {
		notifType notification.NotificationType
		channel   notification.Channel
		want      bool
	}{
		{notification.TypeAttendanceCheckIn, notification.ChannelPush, true},
		{notification.TypeAttendanceCheckIn, notification.ChannelEmail, false},
		// saved preference: push off, email on
		{notification.TypeMovementAlert, notification.ChannelPush, false},
		{notification.TypeMovementAlert, notification.ChannelEmail, true},
	}

	for _, tt := range tests {
		got, err := svc.IsEnabled(ctx, "u1", tt.notifType, tt.channel)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.notifType, tt.channel)
	}
}

func TestGetNotification_OwnerOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{BatchSize: 1, WorkerCount: 1})

	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Type:        notification.TypeAttendanceCheckIn,
		Title:       "Checked in",
	}))
	svc.Stop()
	require.Equal(t, 1, repo.count())
	id := repo.created[0].ID

	got, err := svc.GetNotification(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "Checked in", got.Title)

	_, err = svc.GetNotification(context.Background(), "u2", id)
	assert.ErrorIs(t, err, notification.ErrUnauthorized)

	_, err = svc.GetNotification(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func TestMarkAsRead_Validates(t *testing.T) {
	svc := NewNotificationService(&fakeRepo{}, sse.NewHub(), Config{WorkerCount: 1})
	defer svc.Stop()

	err := svc.MarkAsRead(context.Background(), "u1", notification.MarkAsReadRequest{NotificationIDs: []string{"not-a-uuid"}})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "notification_ids", verrs[0].Field)
}
