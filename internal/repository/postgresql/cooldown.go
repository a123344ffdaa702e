package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/movement"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

// CooldownRepository is the postgres movement cooldown store.
type CooldownRepository struct {
	db *database.DB
}

// NewCooldownRepository persists movement alert cooldowns so they survive
// restarts and are shared between instances.
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{db: db}
}

var (
	_ movement.CooldownStore  = (*CooldownRepository)(nil)
	_ movement.CooldownPurger = (*CooldownRepository)(nil)
)

// TryAcquire implements movement.CooldownStore. The row is only claimed when
// it does not exist or its last alert is older than ttl.
func (r *CooldownRepository) TryAcquire(ctx context.Context, userID string, now time.Time, ttl time.Duration) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO movement_alert_cooldowns (user_id, last_alert_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_alert_at = EXCLUDED.last_alert_at
		WHERE movement_alert_cooldowns.last_alert_at <= $3
	`

	tag, err := q.Exec(ctx, query, userID, now, now.Add(-ttl))
	if err != nil {
		return false, fmt.Errorf("failed to acquire movement cooldown: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// PurgeExpired implements movement.CooldownPurger.
func (r *CooldownRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM movement_alert_cooldowns WHERE last_alert_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge movement cooldowns: %w", err)
	}

	return tag.RowsAffected(), nil
}
