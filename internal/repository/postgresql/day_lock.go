package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/jackc/pgx/v5"
)

type dayLocker struct {
	db *database.DB
}

// NewDayLocker serializes writes per (user, business day) with a
// transaction-scoped advisory lock. The lock is released on commit or rollback.
func NewDayLocker(db *database.DB) attendance.DayLocker {
	return &dayLocker{db: db}
}

// WithDayLock implements attendance.DayLocker.
func (l *dayLocker) WithDayLock(ctx context.Context, userID string, day time.Time, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, l.db, func(tx pgx.Tx) error {
		key := DayLockKey(userID, day)
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("failed to acquire day lock: %w", err)
		}
		return fn(WithTx(ctx, tx))
	})
}

// DayLockKey is the advisory lock key for one user and business day.
func DayLockKey(userID string, day time.Time) string {
	return userID + "|" + utils.BusinessDate(day).Format(utils.DateLayout)
}
