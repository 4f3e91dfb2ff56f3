package device

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksha-app/sos-api/internal/model"
	apperrors "github.com/raksha-app/sos-api/pkg/errors"
)

type fakeDeviceRepo struct {
	devices map[string]*model.Device
	gets    int
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*model.Device)}
}

func (r *fakeDeviceRepo) Create(_ context.Context, device *model.Device) error {
	device.CreatedAt = time.Now()
	device.UpdatedAt = device.CreatedAt
	clone := *device
	r.devices[device.ID] = &clone
	return nil
}

func (r *fakeDeviceRepo) Get(_ context.Context, deviceID string) (*model.Device, error) {
	r.gets++
	device, ok := r.devices[deviceID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *device
	return &clone, nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, device *model.Device) error {
	device.UpdatedAt = time.Now()
	clone := *device
	r.devices[device.ID] = &clone
	return nil
}

func (r *fakeDeviceRepo) UpdateLastLocation(_ context.Context, deviceID string, lat model.Latitude, lng model.Longitude, seenAt time.Time) error {
	device, ok := r.devices[deviceID]
	if !ok {
		return sql.ErrNoRows
	}
	device.LastLat = &lat
	device.LastLng = &lng
	device.LastSeenAt = &seenAt
	return nil
}

func TestRegisterCreatesDevice(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo, zerolog.Nop())

	device, err := svc.Register(context.Background(), &model.RegisterDeviceRequest{
		DeviceID: "device-1",
		Name:     "Priya's phone",
		Phone:    "+911234567890",
	})
	require.NoError(t, err)

	assert.Equal(t, "device-1", device.ID)
	assert.True(t, device.Active)
	require.Contains(t, repo.devices, "device-1")
}

func TestRegisterIsIdempotent(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo, zerolog.Nop())

	first, err := svc.Register(context.Background(), &model.RegisterDeviceRequest{
		DeviceID: "device-1",
		Name:     "Priya's phone",
		Phone:    "+911234567890",
	})
	require.NoError(t, err)

	// A second registration with different details returns the stored
	// device unchanged.
	second, err := svc.Register(context.Background(), &model.RegisterDeviceRequest{
		DeviceID: "device-1",
		Name:     "Someone else",
		Phone:    "+919999999999",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Priya's phone", second.Name)
	assert.Equal(t, "+911234567890", second.Phone)
	assert.Len(t, repo.devices, 1)
}

func TestGetCachesProfile(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Register(context.Background(), &model.RegisterDeviceRequest{
		DeviceID: "device-1",
		Name:     "Priya's phone",
		Phone:    "+911234567890",
	})
	require.NoError(t, err)
	getsAfterRegister := repo.gets

	for i := 0; i < 3; i++ {
		device, err := svc.Get(context.Background(), "device-1")
		require.NoError(t, err)
		assert.Equal(t, "device-1", device.ID)
	}

	// Register primed the cache, so the repo is never hit again.
	assert.Equal(t, getsAfterRegister, repo.gets)
}

func TestGetFreshBypassesCache(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Register(context.Background(), &model.RegisterDeviceRequest{
		DeviceID: "device-1",
		Name:     "Priya's phone",
		Phone:    "+911234567890",
	})
	require.NoError(t, err)

	// Location moves behind the cache's back, as the SOS path does.
	lat, lng := model.Latitude(12.9716), model.Longitude(77.5946)
	repo.devices["device-1"].LastLat = &lat
	repo.devices["device-1"].LastLng = &lng

	cached, err := svc.Get(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Nil(t, cached.LastLat)

	getsBefore := repo.gets
	fresh, err := svc.GetFresh(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, getsBefore+1, repo.gets)
	require.NotNil(t, fresh.LastLat)
	assert.Equal(t, "12.97160000", fresh.LastLat.String())

	// The fresh read re-primes the cache.
	cached, err = svc.Get(context.Background(), "device-1")
	require.NoError(t, err)
	assert.NotNil(t, cached.LastLat)
}

func TestGetMissingDevice(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpdateInvalidatesCache(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Register(context.Background(), &model.RegisterDeviceRequest{
		DeviceID: "device-1",
		Name:     "Priya's phone",
		Phone:    "+911234567890",
	})
	require.NoError(t, err)

	name := "Renamed phone"
	updated, err := svc.Update(context.Background(), "device-1", &model.UpdateDeviceRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed phone", updated.Name)

	// The next read must come from the repo, not the stale cache entry.
	device, err := svc.Get(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed phone", device.Name)
}

func TestUpdateMissingDevice(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo, zerolog.Nop())

	name := "x"
	_, err := svc.Update(context.Background(), "nope", &model.UpdateDeviceRequest{Name: &name})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
