package sos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/raksha-app/sos-api/internal/model"
)

type fakeEventRepo struct {
	events map[uuid.UUID]*model.SOSEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*model.SOSEvent)}
}

func (r *fakeEventRepo) Create(_ context.Context, event *model.SOSEvent) error {
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) Get(_ context.Context, id uuid.UUID) (*model.SOSEvent, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.SOSStatus, resolvedAt *time.Time) error {
	event, ok := r.events[id]
	if !ok {
		return sql.ErrNoRows
	}
	event.Status = status
	event.ResolvedAt = resolvedAt
	event.UpdatedAt = time.Now()
	return nil
}

func (r *fakeEventRepo) UpdateNotificationsSent(_ context.Context, id uuid.UUID, count int) error {
	event, ok := r.events[id]
	if !ok {
		return sql.ErrNoRows
	}
	event.NotificationsSent = count
	return nil
}

func (r *fakeEventRepo) ListActiveByDevice(_ context.Context, deviceID string) ([]*model.SOSEvent, error) {
	var out []*model.SOSEvent
	for _, event := range r.events {
		if event.DeviceID == deviceID && event.Status == model.SOSStatusActive {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListStaleActive(_ context.Context, cutoff time.Time) ([]*model.SOSEvent, error) {
	var out []*model.SOSEvent
	for _, event := range r.events {
		if event.Status == model.SOSStatusActive && event.UpdatedAt.Before(cutoff) {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeLocationRepo struct {
	points []*model.LocationPoint
}

func (r *fakeLocationRepo) Append(_ context.Context, point *model.LocationPoint) error {
	point.CreatedAt = time.Now()
	copied := *point
	r.points = append(r.points, &copied)
	return nil
}

func (r *fakeLocationRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*model.LocationPoint, error) {
	var out []*model.LocationPoint
	for _, p := range r.points {
		if p.EventID == eventID {
			out = append(out, p)
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
	copied := *device
	r.devices[device.ID] = &copied
	return nil
}

func (r *fakeDeviceRepo) Get(_ context.Context, deviceID string) (*model.Device, error) {
	device, ok := r.devices[deviceID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *device
	return &copied, nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, device *model.Device) error {
	if _, ok := r.devices[device.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *device
	r.devices[device.ID] = &copied
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

type fakeOfflineRepo struct {
	items map[uuid.UUID]*model.OfflineSOS
}

func newFakeOfflineRepo() *fakeOfflineRepo {
	return &fakeOfflineRepo{items: make(map[uuid.UUID]*model.OfflineSOS)}
}

func (r *fakeOfflineRepo) Create(_ context.Context, item *model.OfflineSOS) error {
	item.CreatedAt = time.Now()
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeOfflineRepo) Get(_ context.Context, id uuid.UUID) (*model.OfflineSOS, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (r *fakeOfflineRepo) Update(_ context.Context, item *model.OfflineSOS) error {
	if _, ok := r.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeOfflineRepo) ListPendingByDevice(_ context.Context, deviceID string) ([]*model.OfflineSOS, error) {
	var out []*model.OfflineSOS
	for _, item := range r.items {
		if item.DeviceID == deviceID && item.Status == model.OfflineStatusPending {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeRateLimitRepo struct {
	records map[string]*model.SOSRateLimit
}

func newFakeRateLimitRepo() *fakeRateLimitRepo {
	return &fakeRateLimitRepo{records: make(map[string]*model.SOSRateLimit)}
}

func (r *fakeRateLimitRepo) Get(_ context.Context, deviceID string) (*model.SOSRateLimit, error) {
	record, ok := r.records[deviceID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (r *fakeRateLimitRepo) Upsert(_ context.Context, record *model.SOSRateLimit) error {
	copied := *record
	r.records[record.DeviceID] = &copied
	return nil
}
