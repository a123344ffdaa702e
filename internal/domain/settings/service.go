package settings

import "context"

type SettingsService interface {
	// Snapshot reads the current app_config. It is never cached.
	Snapshot(ctx context.Context) (Snapshot, error)
}
