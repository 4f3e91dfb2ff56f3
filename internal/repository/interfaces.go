package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/raksha-app/sos-api/internal/model"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *model.Device) error
	Get(ctx context.Context, deviceID string) (*model.Device, error)
	Update(ctx context.Context, device *model.Device) error
	UpdateLastLocation(ctx context.Context, deviceID string, lat model.Latitude, lng model.Longitude, seenAt time.Time) error
}

type ContactRepository interface {
	Create(ctx context.Context, contact *model.EmergencyContact) error
	Get(ctx context.Context, id uuid.UUID) (*model.EmergencyContact, error)
	Update(ctx context.Context, contact *model.EmergencyContact) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDevice(ctx context.Context, deviceID string) ([]*model.EmergencyContact, error)
}

type SOSEventRepository interface {
	Create(ctx context.Context, event *model.SOSEvent) error
	Get(ctx context.Context, id uuid.UUID) (*model.SOSEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SOSStatus, resolvedAt *time.Time) error
	UpdateNotificationsSent(ctx context.Context, id uuid.UUID, count int) error
	ListActiveByDevice(ctx context.Context, deviceID string) ([]*model.SOSEvent, error)
	ListStaleActive(ctx context.Context, cutoff time.Time) ([]*model.SOSEvent, error)
}

type LocationRepository interface {
	Append(ctx context.Context, point *model.LocationPoint) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.LocationPoint, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	Update(ctx context.Context, n *model.Notification) error
	CountSuccessful(ctx context.Context, eventID uuid.UUID) (int, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Notification, error)
}

type OfflineRepository interface {
	Create(ctx context.Context, item *model.OfflineSOS) error
	Get(ctx context.Context, id uuid.UUID) (*model.OfflineSOS, error)
	Update(ctx context.Context, item *model.OfflineSOS) error
	ListPendingByDevice(ctx context.Context, deviceID string) ([]*model.OfflineSOS, error)
}

type RateLimitRepository interface {
	Get(ctx context.Context, deviceID string) (*model.SOSRateLimit, error)
	Upsert(ctx context.Context, record *model.SOSRateLimit) error
}
