package settings

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
)

type SettingsServiceImpl struct {
	repo settings.AppConfigRepository
}

func NewSettingsService(repo settings.AppConfigRepository) settings.SettingsService {
	return &SettingsServiceImpl{repo: repo}
}

// Snapshot implements settings.SettingsService.
func (s *SettingsServiceImpl) Snapshot(ctx context.Context) (settings.Snapshot, error) {
	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return settings.DefaultSnapshot(), fmt.Errorf("failed to load app config: %w", err)
	}
	return settings.ParseSnapshot(values), nil
}
