package device

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
	apperrors "github.com/raksha-app/sos-api/pkg/errors"
)

const (
	profileCacheTTL   = 5 * time.Minute
	profileCacheSweep = 10 * time.Minute
)

type Service interface {
	// Register is idempotent: re-registering an existing device id
	// returns the stored device unchanged.
	Register(ctx context.Context, req *model.RegisterDeviceRequest) (*model.Device, error)
	Get(ctx context.Context, deviceID string) (*model.Device, error)
	// GetFresh loads the device from storage, bypassing the profile
	// cache, and refreshes the cached copy.
	GetFresh(ctx context.Context, deviceID string) (*model.Device, error)
	Update(ctx context.Context, deviceID string, req *model.UpdateDeviceRequest) (*model.Device, error)
}

type service struct {
	repo   repository.DeviceRepository
	cache  *gocache.Cache
	logger zerolog.Logger
}

func NewService(repo repository.DeviceRepository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		cache:  gocache.New(profileCacheTTL, profileCacheSweep),
		logger: logger.With().Str("component", "device").Logger(),
	}
}

func (s *service) Register(ctx context.Context, req *model.RegisterDeviceRequest) (*model.Device, error) {
	existing, err := s.repo.Get(ctx, req.DeviceID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Unavailable("could not load device", err)
	}

	device := &model.Device{
		ID:     req.DeviceID,
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Active: true,
	}
	if err := s.repo.Create(ctx, device); err != nil {
		return nil, apperrors.Unavailable("could not register device", err)
	}

	s.cache.Set(device.ID, device, gocache.DefaultExpiration)
	s.logger.Info().Str("device_id", device.ID).Msg("device registered")
	return device, nil
}

func (s *service) Get(ctx context.Context, deviceID string) (*model.Device, error) {
	if cached, ok := s.cache.Get(deviceID); ok {
		return cached.(*model.Device), nil
	}

	device, err := s.repo.Get(ctx, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("device", err)
	}
	if err != nil {
		return nil, apperrors.Unavailable("could not load device", err)
	}

	s.cache.Set(deviceID, device, gocache.DefaultExpiration)
	return device, nil
}

func (s *service) GetFresh(ctx context.Context, deviceID string) (*model.Device, error) {
	device, err := s.repo.Get(ctx, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("device", err)
	}
	if err != nil {
		return nil, apperrors.Unavailable("could not load device", err)
	}

	s.cache.Set(deviceID, device, gocache.DefaultExpiration)
	return device, nil
}

func (s *service) Update(ctx context.Context, deviceID string, req *model.UpdateDeviceRequest) (*model.Device, error) {
	device, err := s.repo.Get(ctx, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("device", err)
	}
	if err != nil {
		return nil, apperrors.Unavailable("could not load device", err)
	}

	if req.Name != nil {
		device.Name = *req.Name
	}
	if req.Phone != nil {
		device.Phone = *req.Phone
	}
	if req.Email != nil {
		device.Email = req.Email
	}
	if req.Active != nil {
		device.Active = *req.Active
	}

	if err := s.repo.Update(ctx, device); err != nil {
		return nil, apperrors.Unavailable("could not update device", err)
	}

	s.cache.Delete(deviceID)
	return device, nil
}
