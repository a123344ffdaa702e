package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type appConfigRepository struct {
	db *database.DB
}

func NewAppConfigRepository(db *database.DB) settings.AppConfigRepository {
	return &appConfigRepository{db: db}
}

// GetAll implements settings.AppConfigRepository.
func (r *appConfigRepository) GetAll(ctx context.Context) (map[string]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT key, value FROM app_config`)
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan app config: %w", err)
		}
		values[key] = value
	}

	return values, rows.Err()
}
