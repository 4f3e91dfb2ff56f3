package contact

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksha-app/sos-api/internal/model"
	apperrors "github.com/raksha-app/sos-api/pkg/errors"
)

type fakeContactRepo struct {
	contacts map[uuid.UUID]*model.EmergencyContact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[uuid.UUID]*model.EmergencyContact)}
}

func (r *fakeContactRepo) Create(_ context.Context, contact *model.EmergencyContact) error {
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt
	clone := *contact
	r.contacts[contact.ID] = &clone
	return nil
}

func (r *fakeContactRepo) Get(_ context.Context, id uuid.UUID) (*model.EmergencyContact, error) {
	contact, ok := r.contacts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *contact
	return &clone, nil
}

func (r *fakeContactRepo) Update(_ context.Context, contact *model.EmergencyContact) error {
	contact.UpdatedAt = time.Now()
	clone := *contact
	r.contacts[contact.ID] = &clone
	return nil
}

func (r *fakeContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.contacts, id)
	return nil
}

func (r *fakeContactRepo) ListByDevice(_ context.Context, deviceID string) ([]*model.EmergencyContact, error) {
	var out []*model.EmergencyContact
	for _, c := range r.contacts {
		if c.DeviceID == deviceID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeDeviceRepo struct {
	devices map[string]*model.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*model.Device)}
}

func (r *fakeDeviceRepo) Create(_ context.Context, device *model.Device) error {
	r.devices[device.ID] = device
	return nil
}

func (r *fakeDeviceRepo) Get(_ context.Context, deviceID string) (*model.Device, error) {
	device, ok := r.devices[deviceID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return device, nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, _ *model.Device) error { return nil }

func (r *fakeDeviceRepo) UpdateLastLocation(_ context.Context, _ string, _ model.Latitude, _ model.Longitude, _ time.Time) error {
	return nil
}

func newTestService(t *testing.T) (Service, *fakeContactRepo) {
	t.Helper()
	contacts := newFakeContactRepo()
	devices := newFakeDeviceRepo()
	devices.devices["device-1"] = &model.Device{ID: "device-1", Name: "Priya's phone", Active: true}
	return NewService(contacts, devices, zerolog.Nop()), contacts
}

func TestAddContact(t *testing.T) {
	svc, repo := newTestService(t)

	contact, err := svc.Add(context.Background(), "device-1", &model.AddContactRequest{
		Name:     "Asha",
		Phone:    "+911234567890",
		Priority: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "device-1", contact.DeviceID)
	assert.Equal(t, "Asha", contact.Name)
	assert.True(t, contact.Active)
	assert.Contains(t, repo.contacts, contact.ID)
}

func TestAddContactUnknownDevice(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Add(context.Background(), "nope", &model.AddContactRequest{
		Name:  "Asha",
		Phone: "+911234567890",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	assert.Empty(t, repo.contacts)
}

func TestUpdateContactPartial(t *testing.T) {
	svc, _ := newTestService(t)

	contact, err := svc.Add(context.Background(), "device-1", &model.AddContactRequest{
		Name:     "Asha",
		Phone:    "+911234567890",
		Priority: 1,
	})
	require.NoError(t, err)

	phone := "+919999999999"
	active := false
	updated, err := svc.Update(context.Background(), contact.ID, &model.UpdateContactRequest{
		Phone:  &phone,
		Active: &active,
	})
	require.NoError(t, err)

	// Untouched fields survive a partial update.
	assert.Equal(t, "Asha", updated.Name)
	assert.Equal(t, "+919999999999", updated.Phone)
	assert.False(t, updated.Active)
	assert.Equal(t, 1, updated.Priority)
}

func TestUpdateContactMissing(t *testing.T) {
	svc, _ := newTestService(t)

	name := "x"
	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateContactRequest{Name: &name})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestDeleteContact(t *testing.T) {
	svc, repo := newTestService(t)

	contact, err := svc.Add(context.Background(), "device-1", &model.AddContactRequest{
		Name:  "Asha",
		Phone: "+911234567890",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), contact.ID))
	assert.NotContains(t, repo.contacts, contact.ID)

	err = svc.Delete(context.Background(), contact.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestListContacts(t *testing.T) {
	svc, _ := newTestService(t)

	for _, name := range []string{"Asha", "Ravi"} {
		_, err := svc.Add(context.Background(), "device-1", &model.AddContactRequest{
			Name:  name,
			Phone: "+911234567890",
		})
		require.NoError(t, err)
	}

	contacts, err := svc.List(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Len(t, contacts, 2)

	empty, err := svc.List(context.Background(), "device-2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
