package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/jackc/pgx/v5"
)

type summaryRepository struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) attendance.SummaryRepository {
	return &summaryRepository{db: db}
}

const summaryColumns = `id, user_id, date, first_check_in, last_check_out,
	total_work_mins, total_break_mins, overtime_mins, session_count, status,
	created_at, updated_at`

func scanSummary(row pgx.Row) (attendance.DailySummary, error) {
	var s attendance.DailySummary
	err := row.Scan(
		&s.ID, &s.UserID, &s.Date, &s.FirstCheckIn, &s.LastCheckOut,
		&s.TotalWorkMins, &s.TotalBreakMins, &s.OvertimeMins, &s.SessionCount, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return attendance.DailySummary{}, err
	}
	// DATE columns come back as UTC midnight.
	s.Date = time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, utils.BusinessLocation)
	return s, nil
}

// Upsert implements attendance.SummaryRepository.
func (r *summaryRepository) Upsert(ctx context.Context, summary attendance.DailySummary) (attendance.DailySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_summaries (
			id, user_id, date, first_check_in, last_check_out,
			total_work_mins, total_break_mins, overtime_mins, session_count, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, date) DO UPDATE SET
			first_check_in   = EXCLUDED.first_check_in,
			last_check_out   = EXCLUDED.last_check_out,
			total_work_mins  = EXCLUDED.total_work_mins,
			total_break_mins = EXCLUDED.total_break_mins,
			overtime_mins    = EXCLUDED.overtime_mins,
			session_count    = EXCLUDED.session_count,
			status           = EXCLUDED.status,
			updated_at       = NOW()
		RETURNING ` + summaryColumns

	saved, err := scanSummary(q.QueryRow(ctx, query,
		newID(),
		summary.UserID,
		summary.Date.In(utils.BusinessLocation).Format(utils.DateLayout),
		summary.FirstCheckIn,
		summary.LastCheckOut,
		summary.TotalWorkMins,
		summary.TotalBreakMins,
		summary.OvertimeMins,
		summary.SessionCount,
		string(summary.Status),
	))
	if err != nil {
		return attendance.DailySummary{}, fmt.Errorf("failed to upsert daily summary: %w", err)
	}

	return saved, nil
}

// GetByUserAndDate implements attendance.SummaryRepository.
func (r *summaryRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.DailySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + summaryColumns + `
		FROM daily_summaries
		WHERE user_id = $1 AND date = $2
	`

	s, err := scanSummary(q.QueryRow(ctx, query, userID, date.In(utils.BusinessLocation).Format(utils.DateLayout)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily summary: %w", err)
	}

	return &s, nil
}
