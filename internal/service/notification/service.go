package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/attendance-backend-go/internal/service/notification")

const sseEventNotification = "notification"

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
	WriteTimeout  time.Duration // default: 30 seconds
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	return c
}

type NotificationServiceImpl struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config
	now    func() time.Time

	queue    chan *notification.Notification
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService starts cfg.WorkerCount writers that persist queued
// notifications in batches and then push them to open streams.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) *NotificationServiceImpl {
	cfg = cfg.withDefaults()

	s := &NotificationServiceImpl{
		repo:   repo,
		hub:    hub,
		config: cfg,
		now:    time.Now,
		queue:  make(chan *notification.Notification, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)
	return s
}

func (s *NotificationServiceImpl) worker(id int) {
	defer s.wg.Done()

	batch := make([]*notification.Notification, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
		defer cancel()

		if err := s.persist(ctx, batch); err != nil {
			slog.Error("Failed to store notifications", "worker", id, "count", len(batch), "error", err)
		}
		batch = make([]*notification.Notification, 0, s.config.BatchSize)
	}

	add := func(n *notification.Notification) {
		batch = append(batch, n)
		if len(batch) >= s.config.BatchSize {
			flush()
		}
	}

	for {
		select {
		case n := <-s.queue:
			add(n)
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case n := <-s.queue:
					add(n)
				default:
					flush()
					return
				}
			}
		}
	}
}

// persist stores the batch and, only once it is durable, publishes it.
func (s *NotificationServiceImpl) persist(ctx context.Context, batch []*notification.Notification) error {
	ctx, span := tracer.Start(ctx, "notification.persist")
	defer span.End()
	span.SetAttributes(attribute.Int("notification.count", len(batch)))

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for _, n := range batch {
		s.hub.Publish(n.RecipientID, sse.Event{Event: sseEventNotification, Data: toResponse(n)})
	}
	return nil
}

// QueueNotification implements notification.Service. When the queue is full
// the notification is written synchronously instead of being dropped.
func (s *NotificationServiceImpl) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if !req.Type.IsValid() {
		return notification.ErrInvalidNotificationType
	}

	enabled, err := s.IsEnabled(ctx, req.RecipientID, req.Type, notification.ChannelPush)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	n := s.newNotification(req)
	select {
	case s.queue <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		slog.Warn("Notification queue full, writing directly", "recipient_id", req.RecipientID, "type", req.Type)
		return s.persist(ctx, []*notification.Notification{n})
	}
}

func (s *NotificationServiceImpl) newNotification(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		ID:          newID(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Link:        req.Link,
		Data:        req.Data,
		CreatedAt:   s.now(),
	}
}

// IsEnabled implements notification.Service.
func (s *NotificationServiceImpl) IsEnabled(ctx context.Context, userID string, notifType notification.NotificationType, channel notification.Channel) (bool, error) {
	pref, err := s.repo.GetPreference(ctx, userID, notifType)
	if errors.Is(err, notification.ErrPreferenceNotFound) {
		return notification.DefaultPreference(notifType).Enabled(channel), nil
	}
	if err != nil {
		return false, err
	}
	return pref.Enabled(channel), nil
}

func toResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// GetNotifications implements notification.Service.
func (s *NotificationServiceImpl) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	page, pageSize = notification.NormalizePage(page, pageSize)

	list, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]notification.NotificationResponse, 0, len(list))
	for _, n := range list {
		items = append(items, toResponse(n))
	}

	return &notification.NotificationListResponse{
		Notifications: items,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetNotification implements notification.Service.
func (s *NotificationServiceImpl) GetNotification(ctx context.Context, userID string, notificationID string) (notification.NotificationResponse, error) {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return notification.NotificationResponse{}, err
	}
	if n.RecipientID != userID {
		return notification.NotificationResponse{}, notification.ErrUnauthorized
	}
	return toResponse(n), nil
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationServiceImpl) Delete(ctx context.Context, userID string, notificationID string) error {
	return s.repo.Delete(ctx, notificationID, userID)
}

// GetPreferences lists every notification type, saved or defaulted.
func (s *NotificationServiceImpl) GetPreferences(ctx context.Context, userID string) ([]notification.PreferenceResponse, error) {
	saved, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType := make(map[notification.NotificationType]notification.NotificationPreference, len(saved))
	for _, p := range saved {
		byType[p.NotificationType] = *p
	}

	types := notification.AllNotificationTypes()
	out := make([]notification.PreferenceResponse, 0, len(types))
	for _, t := range types {
		p, ok := byType[t]
		if !ok {
			p = notification.DefaultPreference(t)
		}
		out = append(out, notification.PreferenceResponse{
			NotificationType: t,
			EmailEnabled:     p.EmailEnabled,
			PushEnabled:      p.PushEnabled,
		})
	}
	return out, nil
}

func (s *NotificationServiceImpl) UpdatePreference(ctx context.Context, userID string, req notification.UpdatePreferenceRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return s.repo.UpsertPreference(ctx, &notification.NotificationPreference{
		UserID:           userID,
		NotificationType: req.NotificationType,
		EmailEnabled:     req.EmailEnabled,
		PushEnabled:      req.PushEnabled,
		UpdatedAt:        s.now(),
	})
}

// Subscribe adapts the hub stream to typed events. The returned channel
// closes when ctx ends, cleanup runs or the hub shuts down.
func (s *NotificationServiceImpl) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	events, cleanup := s.hub.Subscribe(userID)
	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				resp, ok := ev.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{ID: ev.ID, Event: ev.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop drains the queue into storage and waits for the workers. Safe to call twice.
func (s *NotificationServiceImpl) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
