package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepositoryImpl{db: db}
}

const (
	notificationColumns = `id, recipient_id, sender_id, type, title, message, link, data, is_read, read_at, created_at`
	preferenceColumns   = `id, user_id, notification_type, email_enabled, push_enabled, created_at, updated_at`

	insertNotification = `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, link, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
)

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.SenderID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Link,
		&n.Data,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanPreference(row pgx.Row) (*notification.NotificationPreference, error) {
	var p notification.NotificationPreference
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.NotificationType,
		&p.EmailEnabled,
		&p.PushEnabled,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create implements notification.Repository.
func (r *notificationRepositoryImpl) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

// CreateBatch sends every insert in one round trip. IDs and timestamps are
// filled in place when missing.
func (r *notificationRepositoryImpl) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	now := time.Now()
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = newID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		batch.Queue(insertNotification,
			n.ID, n.RecipientID, n.SenderID, string(n.Type), n.Title, n.Message, n.Link, n.Data, n.IsRead, n.CreatedAt,
		)
	}

	q := GetQuerier(ctx, r.db)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range notifications {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert notification %d of %d: %w", i+1, len(notifications), err)
		}
	}
	return results.Close()
}

// GetByID implements notification.Repository.
func (r *notificationRepositoryImpl) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	n, err := scanNotification(q.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notification.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification %s: %w", id, err)
	}
	return n, nil
}

// GetByUserID returns one page, newest first, plus the total matching count.
func (r *notificationRepositoryImpl) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	// $2 toggles the unread filter so both queries share one shape.
	const filter = `recipient_id = $1 AND (NOT $2 OR is_read = false)`

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE `+filter, userID, unreadOnly).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	if total == 0 {
		return []*notification.Notification{}, 0, nil
	}

	rows, err := q.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE `+filter+`
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, userID, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*notification.Notification, error) {
		return scanNotification(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan notifications: %w", err)
	}
	return list, total, nil
}

// GetUnreadCount implements notification.Repository.
func (r *notificationRepositoryImpl) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead ignores ids that belong to another user or are already read.
func (r *notificationRepositoryImpl) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND id = ANY($3) AND is_read = false
	`, time.Now(), userID, ids)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// MarkAllAsRead implements notification.Repository.
func (r *notificationRepositoryImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND is_read = false
	`, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete implements notification.Repository.
func (r *notificationRepositoryImpl) Delete(ctx context.Context, id string, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// GetPreferences returns only the preferences the user saved.
func (r *notificationRepositoryImpl) GetPreferences(ctx context.Context, userID string) ([]*notification.NotificationPreference, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+preferenceColumns+` FROM notification_preferences WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}

	prefs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*notification.NotificationPreference, error) {
		return scanPreference(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan preferences: %w", err)
	}
	return prefs, nil
}

// GetPreference implements notification.Repository.
func (r *notificationRepositoryImpl) GetPreference(ctx context.Context, userID string, notifType notification.NotificationType) (*notification.NotificationPreference, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPreference(q.QueryRow(ctx, `
		SELECT `+preferenceColumns+`
		FROM notification_preferences
		WHERE user_id = $1 AND notification_type = $2
	`, userID, string(notifType)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notification.ErrPreferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return p, nil
}

// UpsertPreference implements notification.Repository.
func (r *notificationRepositoryImpl) UpsertPreference(ctx context.Context, pref *notification.NotificationPreference) error {
	q := GetQuerier(ctx, r.db)

	if pref.ID == "" {
		pref.ID = newID()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO notification_preferences (id, user_id, notification_type, email_enabled, push_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id, notification_type)
		DO UPDATE SET email_enabled = EXCLUDED.email_enabled,
		              push_enabled = EXCLUDED.push_enabled,
		              updated_at = EXCLUDED.updated_at
	`, pref.ID, pref.UserID, string(pref.NotificationType), pref.EmailEnabled, pref.PushEnabled, time.Now())
	if err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}
