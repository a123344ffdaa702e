package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type geoFenceRepository struct {
	db *database.DB
}

func NewGeoFenceRepository(db *database.DB) geofence.GeoFenceRepository {
	return &geoFenceRepository{db: db}
}

// ListActive implements geofence.GeoFenceRepository.
func (r *geoFenceRepository) ListActive(ctx context.Context) ([]geofence.GeoFence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, latitude, longitude, radius_m, is_active, created_at, updated_at
		FROM geofences
		WHERE is_active = true
		ORDER BY name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}

	fences, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (geofence.GeoFence, error) {
		var f geofence.GeoFence
		err := row.Scan(&f.ID, &f.Name, &f.Latitude, &f.Longitude, &f.RadiusM, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan geofences: %w", err)
	}

	return fences, nil
}
