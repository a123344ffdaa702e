package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/movement"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geocode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance")

// errDayRolledOver means the business day changed while waiting for the lock.
var errDayRolledOver = errors.New("business day changed while waiting for lock")

// AdmissionGuard gates check-in and check-out by location.
type AdmissionGuard interface {
	Enforce(ctx context.Context, u user.User, snap settings.Snapshot, lat, lng float64) error
}

// RateLimiter bounds attendance actions per user.
type RateLimiter interface {
	Allow(key string) bool
}

type AttendanceServiceImpl struct {
	locker      attendance.DayLocker
	sessionRepo attendance.SessionRepository
	summaryRepo attendance.SummaryRepository
	userRepo    user.UserRepository
	shiftRepo   shift.ShiftRepository
	settings    settings.SettingsService
	guard       AdmissionGuard
	geocoder    geocode.Geocoder
	limiter     RateLimiter
	monitor     movement.MonitorService
	notifier    notification.Service
	now         func() time.Time
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *AttendanceServiceImpl) { s.now = now }
}

// WithNotifier sends check-in and check-out notifications to the user.
func WithNotifier(n notification.Service) Option {
	return func(s *AttendanceServiceImpl) { s.notifier = n }
}

func NewAttendanceService(
	locker attendance.DayLocker,
	sessionRepo attendance.SessionRepository,
	summaryRepo attendance.SummaryRepository,
	userRepo user.UserRepository,
	shiftRepo shift.ShiftRepository,
	settingsService settings.SettingsService,
	guard AdmissionGuard,
	geocoder geocode.Geocoder,
	limiter RateLimiter,
	monitor movement.MonitorService,
	opts ...Option,
) *AttendanceServiceImpl {
	s := &AttendanceServiceImpl{
		locker:      locker,
		sessionRepo: sessionRepo,
		summaryRepo: summaryRepo,
		userRepo:    userRepo,
		shiftRepo:   shiftRepo,
		settings:    settingsService,
		guard:       guard,
		geocoder:    geocoder,
		limiter:     limiter,
		monitor:     monitor,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordSession implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordSession(ctx context.Context, req attendance.RecordSessionRequest) (attendance.RecordSessionResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.RecordSession", trace.WithAttributes(
		attribute.String("user.id", req.UserID),
		attribute.String("session.type", string(req.Type)),
	))
	defer span.End()

	resp, err := s.recordSession(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return resp, err
}

func (s *AttendanceServiceImpl) recordSession(ctx context.Context, req attendance.RecordSessionRequest) (attendance.RecordSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordSessionResponse{}, err
	}

	if s.limiter != nil && !s.limiter.Allow(req.UserID) {
		return attendance.RecordSessionResponse{}, attendance.ErrRateLimited
	}

	u, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return attendance.RecordSessionResponse{}, err
	}
	if !u.IsActive {
		return attendance.RecordSessionResponse{}, user.ErrUserInactive
	}

	// Snapshot returns the defaults alongside any read error.
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		slog.Error("Failed to load app config for attendance, using defaults", "user_id", req.UserID, "error", err)
	}

	lat, lng := *req.Latitude, *req.Longitude
	if err := s.guard.Enforce(ctx, u, snap, lat, lng); err != nil {
		return attendance.RecordSessionResponse{}, err
	}

	// Resolved before taking the lock so no network call runs inside it.
	address := geocode.Resolve(ctx, s.geocoder, lat, lng)

	var result recordResult
	for attempt := 0; attempt < 2; attempt++ {
		result, err = s.appendSession(ctx, u.ID, req, address)
		if !errors.Is(err, errDayRolledOver) {
			break
		}
	}
	if err != nil {
		return attendance.RecordSessionResponse{}, err
	}

	slog.Info("Attendance session recorded",
		"user_id", u.ID,
		"type", result.session.Type,
		"session_id", result.session.ID,
		"state", result.state,
	)

	if result.session.Type == attendance.SessionTypeCheckOut && result.firstCheckIn != nil && s.monitor != nil {
		s.monitor.EvaluateCheckout(ctx, u.ID, *result.firstCheckIn, result.session)
	}
	s.notifyRecorded(ctx, result.session)

	return attendance.RecordSessionResponse{
		Session: attendance.ToSessionResponse(result.session),
		Summary: attendance.ToSummaryResponse(result.summary),
		State:   result.state,
	}, nil
}

type recordResult struct {
	session      attendance.Session
	summary      attendance.DailySummary
	state        attendance.DayState
	firstCheckIn *attendance.Session
}

// appendSession runs read, validate, write and re-aggregate as one unit under
// the (user, day) lock.
func (s *AttendanceServiceImpl) appendSession(ctx context.Context, userID string, req attendance.RecordSessionRequest, address string) (recordResult, error) {
	var result recordResult
	day := utils.BusinessDate(s.now())

	err := s.locker.WithDayLock(ctx, userID, day, func(ctx context.Context) error {
		// Timestamp is taken under the lock so accepted sessions are ordered
		// the same way they were validated.
		now := s.now()
		if !utils.BusinessDate(now).Equal(day) {
			return errDayRolledOver
		}

		start, end := utils.DayRange(now)
		sessions, err := s.sessionRepo.ListByUserBetween(ctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("failed to load today's sessions: %w", err)
		}

		current, err := attendance.ReplayState(sessions)
		if err != nil {
			return fmt.Errorf("stored sessions for %s on %s break alternation: %w", userID, day.Format(utils.DateLayout), err)
		}

		next, err := attendance.Transition(current, req.Type)
		if err != nil {
			return err
		}

		if n := len(sessions); n > 0 && now.Before(sessions[n-1].Timestamp) {
			now = sessions[n-1].Timestamp
		}

		created, err := s.sessionRepo.Create(ctx, attendance.Session{
			UserID:     userID,
			Type:       req.Type,
			Timestamp:  now,
			Latitude:   *req.Latitude,
			Longitude:  *req.Longitude,
			Address:    &address,
			DeviceInfo: req.DeviceInfo,
		})
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		sessions = append(sessions, created)

		summary, err := s.upsertSummary(ctx, userID, day, sessions)
		if err != nil {
			return err
		}

		result = recordResult{
			session:      created,
			summary:      summary,
			state:        next,
			firstCheckIn: attendance.FirstCheckIn(sessions),
		}
		return nil
	})

	return result, err
}

func (s *AttendanceServiceImpl) upsertSummary(ctx context.Context, userID string, day time.Time, sessions []attendance.Session) (attendance.DailySummary, error) {
	sh, err := s.resolveShift(ctx, userID)
	if err != nil {
		return attendance.DailySummary{}, err
	}

	summary, err := s.summaryRepo.Upsert(ctx, BuildSummary(userID, day, sessions, sh))
	if err != nil {
		return attendance.DailySummary{}, fmt.Errorf("failed to upsert daily summary: %w", err)
	}
	return summary, nil
}

func (s *AttendanceServiceImpl) resolveShift(ctx context.Context, userID string) (shift.Shift, error) {
	sh, err := s.shiftRepo.GetForUser(ctx, userID)
	if err != nil {
		return shift.Shift{}, fmt.Errorf("failed to load shift: %w", err)
	}
	if sh == nil {
		return shift.Default(), nil
	}
	return *sh, nil
}

func (s *AttendanceServiceImpl) notifyRecorded(ctx context.Context, session attendance.Session) {
	if s.notifier == nil {
		return
	}

	local := session.Timestamp.In(utils.BusinessLocation).Format("15:04")
	req := notification.CreateNotificationRequest{
		RecipientID: session.UserID,
		Type:        notification.TypeAttendanceCheckIn,
		Title:       "Checked in",
		Message:     fmt.Sprintf("You checked in at %s", local),
		Data: map[string]interface{}{
			"session_id": session.ID,
		},
	}
	if session.Type == attendance.SessionTypeCheckOut {
		req.Type = notification.TypeAttendanceCheckOut
		req.Title = "Checked out"
		req.Message = fmt.Sprintf("You checked out at %s", local)
	}

	if err := s.notifier.QueueNotification(ctx, req); err != nil {
		slog.Error("Failed to queue attendance notification", "user_id", session.UserID, "error", err)
	}
}

// GetTodaySessions implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTodaySessions(ctx context.Context, userID string, date string) (attendance.TodaySessionsResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.GetTodaySessions", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	day := utils.BusinessDate(s.now())
	if date != "" {
		parsed, err := utils.ParseBusinessDate(date)
		if err != nil {
			return attendance.TodaySessionsResponse{}, validator.ValidationErrors{{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			}}
		}
		day = parsed
	}

	start, end := utils.DayRange(day)
	sessions, err := s.sessionRepo.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return attendance.TodaySessionsResponse{}, fmt.Errorf("failed to load sessions: %w", err)
	}

	state, err := attendance.ReplayState(sessions)
	if err != nil {
		slog.Warn("Stored sessions break alternation", "user_id", userID, "date", day.Format(utils.DateLayout), "error", err)
	}

	resp := attendance.TodaySessionsResponse{
		Date:     day.Format(utils.DateLayout),
		State:    state,
		Sessions: attendance.ToSessionResponses(sessions),
	}

	summary, err := s.summaryRepo.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		return attendance.TodaySessionsResponse{}, fmt.Errorf("failed to load summary: %w", err)
	}
	if summary != nil {
		sr := attendance.ToSummaryResponse(*summary)
		resp.Summary = &sr
	}

	return resp, nil
}

// GetTodayStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTodayStatus(ctx context.Context, userID string) (attendance.TodayStatusResponse, error) {
	now := s.now()
	start, end := utils.DayRange(now)

	sessions, err := s.sessionRepo.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to load sessions: %w", err)
	}

	state, err := attendance.ReplayState(sessions)
	if err != nil {
		slog.Warn("Stored sessions break alternation", "user_id", userID, "error", err)
	}

	work, brk := ComputeRunningDurations(sessions, now)
	resp := attendance.TodayStatusResponse{
		Date:         start.Format(utils.DateLayout),
		State:        state,
		CanCheckIn:   state.CanCheckIn(),
		CanCheckOut:  state.CanCheckOut(),
		WorkedMins:   work,
		BreakMins:    brk,
		SessionCount: len(sessions),
	}

	if first := attendance.FirstCheckIn(sessions); first != nil {
		ts := first.Timestamp.In(utils.BusinessLocation).Format(time.RFC3339)
		resp.FirstCheckIn = &ts
	}

	switch state {
	case attendance.DayStateNotStarted:
		resp.Message = "You have not checked in yet today"
	case attendance.DayStateCheckedIn:
		since := sessions[len(sessions)-1].Timestamp.In(utils.BusinessLocation).Format("15:04")
		resp.Message = fmt.Sprintf("Checked in since %s", since)
	case attendance.DayStateCheckedOut:
		resp.Message = "You are checked out"
	}

	return resp, nil
}

// RecomputeSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecomputeSummary(ctx context.Context, userID string, date time.Time) (attendance.DailySummary, error) {
	day := utils.BusinessDate(date)

	var summary attendance.DailySummary
	err := s.locker.WithDayLock(ctx, userID, day, func(ctx context.Context) error {
		start, end := utils.DayRange(day)
		sessions, err := s.sessionRepo.ListByUserBetween(ctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		if len(sessions) == 0 {
			return attendance.ErrSummaryNotFound
		}

		summary, err = s.upsertSummary(ctx, userID, day, sessions)
		return err
	})

	return summary, err
}
