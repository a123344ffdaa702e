package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAppConfigRepo struct {
	values map[string]string
	err    error
}

func (f *fakeAppConfigRepo) GetAll(ctx context.Context) (map[string]string, error) {
	return f.values, f.err
}

func TestSnapshot_ReadsEveryCall(t *testing.T) {
	repo := &fakeAppConfigRepo{values: map[string]string{"GEOFENCE_ENFORCE": "false"}}
	svc := NewSettingsService(repo)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.GeofenceEnforce)

	repo.values = map[string]string{"GEOFENCE_ENFORCE": "true"}
	snap, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.GeofenceEnforce)
}

func TestSnapshot_RepositoryError(t *testing.T) {
	svc := NewSettingsService(&fakeAppConfigRepo{err: errors.New("db down")})
	snap, err := svc.Snapshot(context.Background())
	assert.Error(t, err)
	assert.Equal(t, settings.DefaultSnapshot(), snap)
}
