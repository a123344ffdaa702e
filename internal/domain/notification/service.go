package notification

import (
	"context"
)

// Service stores in-app notifications and pushes them to open SSE streams.
type Service interface {
	// QueueNotification is asynchronous. Recipients who switched the push
	// channel off for the type are skipped silently.
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	// IsEnabled resolves the recipient's preference, falling back to DefaultPreference.
	IsEnabled(ctx context.Context, userID string, notifType NotificationType, channel Channel) (bool, error)

	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetNotification(ctx context.Context, userID string, notificationID string) (NotificationResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID string) error

	GetPreferences(ctx context.Context, userID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req UpdatePreferenceRequest) error

	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Stop flushes queued notifications and stops the workers.
	Stop()
}
