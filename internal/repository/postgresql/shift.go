package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

// GetForUser implements shift.ShiftRepository. The user's assigned active
// shift wins over the active default one.
func (r *shiftRepository) GetForUser(ctx context.Context, userID string) (*shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.name, to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
			   s.grace_minutes, s.standard_work_mins, s.is_default, s.is_active,
			   s.created_at, s.updated_at
		FROM shifts s
		LEFT JOIN users u ON u.shift_id = s.id AND u.id = $1
		WHERE s.is_active = true
		  AND (u.id IS NOT NULL OR s.is_default = true)
		ORDER BY (u.id IS NOT NULL) DESC, s.created_at ASC
		LIMIT 1
	`

	var s shift.Shift
	err := q.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.Name,
		&s.StartTime,
		&s.EndTime,
		&s.GraceMinutes,
		&s.StandardWorkMins,
		&s.IsDefault,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shift for user: %w", err)
	}

	return &s, nil
}
