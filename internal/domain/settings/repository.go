package settings

import "context"

type AppConfigRepository interface {
	// GetAll returns every app_config row as key -> raw value.
	GetAll(ctx context.Context) (map[string]string, error)
}
