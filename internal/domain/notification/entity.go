package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAttendanceCheckIn  NotificationType = "attendance_check_in"
	TypeAttendanceCheckOut NotificationType = "attendance_check_out"
	TypeMovementAlert      NotificationType = "movement_alert"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeAttendanceCheckIn,
		TypeAttendanceCheckOut,
		TypeMovementAlert,
	}
}

func (t NotificationType) IsValid() bool {
	for _, v := range AllNotificationTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Channel is a delivery path a user can switch off per notification type.
type Channel string

const (
	ChannelPush  Channel = "push"  // in-app list and SSE stream
	ChannelEmail Channel = "email" // only movement alerts are mailed today
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Link        *string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// NotificationPreference represents user preference for a notification type
type NotificationPreference struct {
	ID               string
	UserID           string
	NotificationType NotificationType
	EmailEnabled     bool
	PushEnabled      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultPreference applies when the user never saved one for t.
// Check-in and check-out receipts are not emailed unless asked for.
func DefaultPreference(t NotificationType) NotificationPreference {
	return NotificationPreference{
		NotificationType: t,
		PushEnabled:      true,
		EmailEnabled:     t == TypeMovementAlert,
	}
}

func (p NotificationPreference) Enabled(c Channel) bool {
	switch c {
	case ChannelPush:
		return p.PushEnabled
	case ChannelEmail:
		return p.EmailEnabled
	default:
		return false
	}
}
