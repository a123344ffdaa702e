package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type sessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) attendance.SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, user_id, type, timestamp, latitude, longitude, address, device_info, created_at`

func scanSession(row pgx.Row) (attendance.Session, error) {
	var s attendance.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.Type, &s.Timestamp,
		&s.Latitude, &s.Longitude, &s.Address, &s.DeviceInfo,
		&s.CreatedAt,
	)
	return s, err
}

// Create implements attendance.SessionRepository.
func (r *sessionRepository) Create(ctx context.Context, session attendance.Session) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	if session.ID == "" {
		session.ID = newID()
	}

	query := `
		INSERT INTO attendance_sessions (id, user_id, type, timestamp, latitude, longitude, address, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + sessionColumns

	created, err := scanSession(q.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		string(session.Type),
		session.Timestamp,
		session.Latitude,
		session.Longitude,
		session.Address,
		session.DeviceInfo,
	))
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to create attendance session: %w", err)
	}

	return created, nil
}

// ListByUserBetween implements attendance.SessionRepository.
func (r *sessionRepository) ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE user_id = $1
		  AND timestamp >= $2
		  AND timestamp < $3
		ORDER BY timestamp ASC, seq ASC
	`

	rows, err := q.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]attendance.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance sessions: %w", err)
	}

	return sessions, nil
}

// ListUserIDsBetween implements attendance.SessionRepository.
func (r *sessionRepository) ListUserIDsBetween(ctx context.Context, start, end time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT user_id
		FROM attendance_sessions
		WHERE timestamp >= $1 AND timestamp < $2
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with sessions: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect user ids: %w", err)
	}
	return ids, nil
}
