package contact

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
	apperrors "github.com/raksha-app/sos-api/pkg/errors"
)

type Service interface {
	Add(ctx context.Context, deviceID string, req *model.AddContactRequest) (*model.EmergencyContact, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateContactRequest) (*model.EmergencyContact, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns the device's contacts in ascending priority order.
	List(ctx context.Context, deviceID string) ([]*model.EmergencyContact, error)
}

type service struct {
	repo    repository.ContactRepository
	devices repository.DeviceRepository
	logger  zerolog.Logger
}

func NewService(repo repository.ContactRepository, devices repository.DeviceRepository, logger zerolog.Logger) Service {
	return &service{
		repo:    repo,
		devices: devices,
		logger:  logger.With().Str("component", "contacts").Logger(),
	}
}

func (s *service) Add(ctx context.Context, deviceID string, req *model.AddContactRequest) (*model.EmergencyContact, error) {
	if _, err := s.devices.Get(ctx, deviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("device", err)
		}
		return nil, apperrors.Unavailable("could not load device", err)
	}

	contact := &model.EmergencyContact{
		ID:       uuid.New(),
		DeviceID: deviceID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Priority: req.Priority,
		Active:   true,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, apperrors.Unavailable("could not create contact", err)
	}

	s.logger.Info().
		Str("device_id", deviceID).
		Str("contact_id", contact.ID.String()).
		Msg("emergency contact added")
	return contact, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateContactRequest) (*model.EmergencyContact, error) {
	contact, err := s.repo.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("contact", err)
	}
	if err != nil {
		return nil, apperrors.Unavailable("could not load contact", err)
	}

	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Email != nil {
		contact.Email = req.Email
	}
	if req.Priority != nil {
		contact.Priority = *req.Priority
	}
	if req.Active != nil {
		contact.Active = *req.Active
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, apperrors.Unavailable("could not update contact", err)
	}
	return contact, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("contact", err)
		}
		return apperrors.Unavailable("could not load contact", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Unavailable("could not delete contact", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, deviceID string) ([]*model.EmergencyContact, error) {
	contacts, err := s.repo.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, apperrors.Unavailable("could not list contacts", err)
	}
	return contacts, nil
}
