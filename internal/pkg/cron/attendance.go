package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/movement"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

// SummaryRecomputer re-aggregates one user's day.
type SummaryRecomputer interface {
	RecomputeSummary(ctx context.Context, userID string, date time.Time) (attendance.DailySummary, error)
}

type AttendanceJobs struct {
	sessionRepo    attendance.SessionRepository
	recomputer     SummaryRecomputer
	cooldownPurger movement.CooldownPurger
	cooldownTTL    time.Duration
	now            func() time.Time
}

// NewAttendanceJobs wires the maintenance jobs. cooldownPurger may be nil
// when cooldowns are kept in memory.
func NewAttendanceJobs(
	sessionRepo attendance.SessionRepository,
	recomputer SummaryRecomputer,
	cooldownPurger movement.CooldownPurger,
	cooldownTTL time.Duration,
) *AttendanceJobs {
	return &AttendanceJobs{
		sessionRepo:    sessionRepo,
		recomputer:     recomputer,
		cooldownPurger: cooldownPurger,
		cooldownTTL:    cooldownTTL,
		now:            time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("recompute_open_summaries", 15*time.Minute, j.RecomputeOpenSummaries, WithTimeout(5*time.Minute))
	if j.cooldownPurger != nil {
		scheduler.AddJob("purge_movement_cooldowns", 1*time.Hour, j.PurgeMovementCooldowns, WithTimeout(time.Minute))
	}
}

// RecomputeOpenSummaries re-aggregates today's summary for every user with
// sessions today. Summaries are derived data, so this repairs any drift.
func (j *AttendanceJobs) RecomputeOpenSummaries(ctx context.Context) error {
	now := j.now()
	start, end := utils.DayRange(now)

	userIDs, err := j.sessionRepo.ListUserIDsBetween(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to list users with sessions: %w", err)
	}

	recomputed := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := j.recomputer.RecomputeSummary(ctx, userID, start); err != nil {
			if errors.Is(err, attendance.ErrSummaryNotFound) {
				continue
			}
			slog.Error("Cron: Failed to recompute summary",
				"user_id", userID,
				"date", start.Format(utils.DateLayout),
				"error", err)
			continue
		}
		recomputed++
	}

	slog.Info("Cron: Recomputed daily summaries", "date", start.Format(utils.DateLayout), "count", recomputed)
	return nil
}

// PurgeMovementCooldowns deletes cooldown rows that can no longer suppress an alert.
func (j *AttendanceJobs) PurgeMovementCooldowns(ctx context.Context) error {
	purged, err := j.cooldownPurger.PurgeExpired(ctx, j.now().Add(-j.cooldownTTL))
	if err != nil {
		return err
	}

	if purged > 0 {
		slog.Info("Cron: Purged movement cooldowns", "count", purged)
	}
	return nil
}
