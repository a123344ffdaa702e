package movement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/movement"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/attendance-backend-go/internal/service/movement")

type MonitorServiceImpl struct {
	sessionRepo attendance.SessionRepository
	userRepo    user.UserRepository
	settings    settings.SettingsService
	cooldown    movement.CooldownStore
	dispatcher  movement.AlertDispatcher
	cooldownTTL time.Duration
	now         func() time.Time
}

type Option func(*MonitorServiceImpl)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *MonitorServiceImpl) { m.now = now }
}

func NewMonitorService(
	sessionRepo attendance.SessionRepository,
	userRepo user.UserRepository,
	settingsService settings.SettingsService,
	cooldown movement.CooldownStore,
	dispatcher movement.AlertDispatcher,
	cooldownTTL time.Duration,
	opts ...Option,
) *MonitorServiceImpl {
	m := &MonitorServiceImpl{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		settings:    settingsService,
		cooldown:    cooldown,
		dispatcher:  dispatcher,
		cooldownTTL: cooldownTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EvaluatePing implements movement.MonitorService.
func (m *MonitorServiceImpl) EvaluatePing(ctx context.Context, req attendance.PingRequest) (movement.PingResult, error) {
	ctx, span := tracer.Start(ctx, "movement.EvaluatePing", trace.WithAttributes(
		attribute.String("user.id", req.UserID),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		return movement.PingResult{}, err
	}

	now := m.now()
	start, end := utils.DayRange(now)
	sessions, err := m.sessionRepo.ListByUserBetween(ctx, req.UserID, start, end)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return movement.PingResult{}, fmt.Errorf("failed to load today's sessions: %w", err)
	}

	n := len(sessions)
	if n == 0 || sessions[n-1].Type != attendance.SessionTypeCheckIn {
		return movement.PingResult{
			Status:  movement.PingStatusNotCheckedIn,
			Message: "You are not checked in",
		}, nil
	}

	snap, err := m.settings.Snapshot(ctx)
	if err != nil {
		slog.Error("Failed to load app config for ping, using defaults", "user_id", req.UserID, "error", err)
	}
	if !snap.MovementAlertEnabled {
		return movement.PingResult{
			Status:  movement.PingStatusDisabled,
			Message: "Movement monitoring is disabled",
		}, nil
	}

	first := attendance.FirstCheckIn(sessions)
	distance := utils.CalculateHaversineDistance(first.Latitude, first.Longitude, *req.Latitude, *req.Longitude)
	result := movement.PingResult{
		DistanceM:  ptr(utils.RoundMeters(distance)),
		ThresholdM: utils.RoundMeters(snap.MovementAlertDistanceM),
	}
	span.SetAttributes(attribute.Int("movement.distance_m", *result.DistanceM))

	if distance <= snap.MovementAlertDistanceM {
		result.Status = movement.PingStatusOK
		result.Message = "Location within allowed range"
		return result, nil
	}

	acquired, err := m.cooldown.TryAcquire(ctx, req.UserID, now, m.cooldownTTL)
	if err != nil {
		// Without a working cooldown we cannot deduplicate, so stay quiet.
		slog.Error("Movement cooldown store failed, alert suppressed", "user_id", req.UserID, "error", err)
		acquired = false
	}
	if !acquired {
		result.Status = movement.PingStatusAlreadyAlerted
		result.Message = "Movement already reported to admins"
		return result, nil
	}

	m.dispatch(ctx, req.UserID, movement.AlertSourcePing, *first, movement.Point{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}, distance, snap.MovementAlertDistanceM, now)

	result.Status = movement.PingStatusAlerted
	result.Message = fmt.Sprintf("You are %dm away from your check-in location, admins have been notified", *result.DistanceM)
	return result, nil
}

// EvaluateCheckout implements movement.MonitorService.
func (m *MonitorServiceImpl) EvaluateCheckout(ctx context.Context, userID string, firstCheckIn, checkout attendance.Session) {
	snap, err := m.settings.Snapshot(ctx)
	if err != nil {
		slog.Error("Failed to load app config for checkout check, using defaults", "user_id", userID, "error", err)
	}
	if !snap.MovementAlertEnabled {
		return
	}

	distance := utils.CalculateHaversineDistance(firstCheckIn.Latitude, firstCheckIn.Longitude, checkout.Latitude, checkout.Longitude)
	if distance <= snap.MovementAlertDistanceM {
		return
	}

	m.dispatch(ctx, userID, movement.AlertSourceCheckout, firstCheckIn, movement.Point{
		Latitude:  checkout.Latitude,
		Longitude: checkout.Longitude,
	}, distance, snap.MovementAlertDistanceM, checkout.Timestamp)
}

func (m *MonitorServiceImpl) dispatch(ctx context.Context, userID string, source movement.AlertSource, origin attendance.Session, current movement.Point, distance, threshold float64, at time.Time) {
	alert := movement.Alert{
		UserID:     userID,
		Source:     source,
		Origin:     movement.Point{Latitude: origin.Latitude, Longitude: origin.Longitude},
		Current:    current,
		DistanceM:  utils.RoundMeters(distance),
		ThresholdM: utils.RoundMeters(threshold),
		OccurredAt: at,
	}

	if u, err := m.userRepo.GetByID(ctx, userID); err != nil {
		slog.Warn("Failed to load user for movement alert", "user_id", userID, "error", err)
	} else {
		alert.UserName = u.DisplayName()
		alert.UserEmail = u.Email
	}

	if err := m.dispatcher.Enqueue(alert); err != nil {
		slog.Error("Failed to enqueue movement alert",
			"user_id", userID,
			"source", source,
			"distance_m", alert.DistanceM,
			"error", err,
		)
		return
	}

	slog.Info("Movement alert queued",
		"user_id", userID,
		"source", source,
		"distance_m", alert.DistanceM,
		"threshold_m", alert.ThresholdM,
	)
}

func ptr[T any](v T) *T {
	return &v
}
