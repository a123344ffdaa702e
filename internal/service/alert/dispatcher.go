package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/movement"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/attendance-backend-go/internal/service/alert")

// Config holds dispatcher configuration
type Config struct {
	Workers     int           // default: 2
	QueueSize   int           // default: 256
	TaskTimeout time.Duration // default: 10 seconds
}

// Dispatcher delivers movement alerts from a bounded queue. Producers never
// block: a full queue rejects the alert.
type Dispatcher struct {
	userRepo user.UserRepository
	mailer   email.EmailService
	notifier notification.Service
	config   Config

	mu      sync.RWMutex
	stopped bool
	queue   chan movement.Alert
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher and starts its workers
func NewDispatcher(userRepo user.UserRepository, mailer email.EmailService, notifier notification.Service, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		userRepo: userRepo,
		mailer:   mailer,
		notifier: notifier,
		config:   cfg,
		queue:    make(chan movement.Alert, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	slog.Info("Alert dispatcher started", "workers", cfg.Workers, "queue_size", cfg.QueueSize)
	return d
}

// Enqueue implements movement.AlertDispatcher.
func (d *Dispatcher) Enqueue(a movement.Alert) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return movement.ErrDispatcherStopped
	}

	select {
	case d.queue <- a:
		return nil
	default:
		return movement.ErrQueueFull
	}
}

// Stop rejects new alerts, drains the queue and waits for the workers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	slog.Info("Alert dispatcher stopped")
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for a := range d.queue {
		if err := d.process(a); err != nil {
			slog.Error("Movement alert delivery failed", "worker", id, "user_id", a.UserID, "error", err)
		}
	}
}

func (d *Dispatcher) process(a movement.Alert) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.TaskTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "alert.dispatch", trace.WithAttributes(
		attribute.String("user.id", a.UserID),
		attribute.String("alert.source", string(a.Source)),
		attribute.Int("alert.distance_m", a.DistanceM),
	))
	defer span.End()

	employee := a.UserName
	if employee == "" {
		employee = a.UserID
	}
	data := email.MovementAlertData{
		EmployeeName:  employee,
		EmployeeEmail: a.UserEmail,
		Source:        sourceLabel(a.Source),
		DistanceM:     a.DistanceM,
		ThresholdM:    a.ThresholdM,
		OriginMapURL:  mapURL(a.Origin),
		CurrentMapURL: mapURL(a.Current),
		OccurredAt:    a.OccurredAt.In(utils.BusinessLocation).Format("02 Jan 2006 15:04 MST"),
	}

	link := "/attendance/today"
	d.notify(ctx, notification.CreateNotificationRequest{
		RecipientID: a.UserID,
		Type:        notification.TypeMovementAlert,
		Title:       "Movement detected",
		Message:     fmt.Sprintf("You are %dm away from your check-in location. Admins have been notified.", a.DistanceM),
		Link:        &link,
		Data:        alertData(a),
	})

	admins, err := d.userRepo.ListAdmins(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to load admins: %w", err)
	}

	sent := 0
	for _, admin := range admins {
		if admin.ID == a.UserID {
			continue
		}

		if d.wantsEmail(ctx, admin.ID) {
			adminData := data
			adminData.RecipientName = admin.DisplayName()
			if err := d.mailer.SendMovementAlert(ctx, admin.Email, adminData); err != nil {
				slog.Error("Failed to email movement alert", "admin_id", admin.ID, "user_id", a.UserID, "error", err)
			} else {
				sent++
			}
		}

		adminLink := "/admin/attendance?user_id=" + a.UserID
		d.notify(ctx, notification.CreateNotificationRequest{
			RecipientID: admin.ID,
			SenderID:    &a.UserID,
			Type:        notification.TypeMovementAlert,
			Title:       "Employee movement alert",
			Message:     fmt.Sprintf("%s is %dm away from their check-in location", employee, a.DistanceM),
			Link:        &adminLink,
			Data:        alertData(a),
		})
	}

	span.SetAttributes(attribute.Int("alert.emails_sent", sent))
	slog.Info("Movement alert dispatched", "user_id", a.UserID, "admins", len(admins), "emails_sent", sent)
	return nil
}

// wantsEmail errs towards sending: a lost alert costs more than an extra mail.
func (d *Dispatcher) wantsEmail(ctx context.Context, adminID string) bool {
	if d.notifier == nil {
		return true
	}
	ok, err := d.notifier.IsEnabled(ctx, adminID, notification.TypeMovementAlert, notification.ChannelEmail)
	if err != nil {
		slog.Warn("Failed to read email preference, sending anyway", "admin_id", adminID, "error", err)
		return true
	}
	return ok
}

func (d *Dispatcher) notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.QueueNotification(ctx, req); err != nil {
		slog.Error("Failed to queue movement notification", "recipient_id", req.RecipientID, "error", err)
	}
}

func alertData(a movement.Alert) map[string]interface{} {
	return map[string]interface{}{
		"user_id":     a.UserID,
		"source":      string(a.Source),
		"distance_m":  a.DistanceM,
		"threshold_m": a.ThresholdM,
		"latitude":    a.Current.Latitude,
		"longitude":   a.Current.Longitude,
	}
}

func sourceLabel(s movement.AlertSource) string {
	if s == movement.AlertSourceCheckout {
		return "check-out"
	}
	return "location ping"
}

func mapURL(p movement.Point) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=17/%.6f/%.6f",
		p.Latitude, p.Longitude, p.Latitude, p.Longitude)
}
