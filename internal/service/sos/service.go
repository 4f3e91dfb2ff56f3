package sos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
	"github.com/raksha-app/sos-api/internal/tracking"
	apperrors "github.com/raksha-app/sos-api/pkg/errors"
	"github.com/raksha-app/sos-api/pkg/metrics"
)

// LocationPublisher pushes a recorded point to live observers and
// disconnects them when the event closes. The websocket feed
// implements it; a nil publisher disables pushes.
type LocationPublisher interface {
	Publish(eventID uuid.UUID, point *model.LocationPoint)
	CloseEvent(eventID uuid.UUID)
}

type Service interface {
	Trigger(ctx context.Context, deviceID string, lat, lng float64, triggerType model.TriggerType) (*model.SOSEvent, error)
	Resolve(ctx context.Context, eventID uuid.UUID) (*model.SOSEvent, error)
	Cancel(ctx context.Context, eventID uuid.UUID) (*model.SOSEvent, error)
	UpdateLocation(ctx context.Context, eventID uuid.UUID, deviceID string, lat, lng float64, accuracy *float64) (*model.LocationPoint, error)
	Get(ctx context.Context, eventID uuid.UUID) (*model.SOSEvent, error)
	ActiveEvents(ctx context.Context, deviceID string) ([]*model.SOSEvent, error)
	LocationHistory(ctx context.Context, eventID uuid.UUID) ([]*model.LocationPoint, error)

	QueueOffline(ctx context.Context, deviceID string, lat, lng float64) (*model.OfflineSOS, error)
	PendingOffline(ctx context.Context, deviceID string) ([]*model.OfflineSOS, error)
	MarkSynced(ctx context.Context, queueID, eventID uuid.UUID) (*model.OfflineSOS, error)
	SyncOffline(ctx context.Context, deviceID string) ([]*model.OfflineSOS, error)
}

type service struct {
	events    repository.SOSEventRepository
	locations repository.LocationRepository
	devices   repository.DeviceRepository
	offline   repository.OfflineRepository
	limiter   *rateLimiter
	sessions  tracking.Store
	publisher LocationPublisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(
	events repository.SOSEventRepository,
	locations repository.LocationRepository,
	devices repository.DeviceRepository,
	offline repository.OfflineRepository,
	rateLimits repository.RateLimitRepository,
	sessions tracking.Store,
	publisher LocationPublisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) Service {
	return &service{
		events:    events,
		locations: locations,
		devices:   devices,
		offline:   offline,
		limiter:   newRateLimiter(rateLimits),
		sessions:  sessions,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With().Str("component", "sos").Logger(),
	}
}

func (s *service) Trigger(ctx context.Context, deviceID string, lat, lng float64, triggerType model.TriggerType) (*model.SOSEvent, error) {
	if triggerType == "" {
		triggerType = model.TriggerManual
	}

	if err := s.limiter.allow(ctx, deviceID); err != nil {
		if apperrors.IsCode(err, apperrors.ErrRateLimited) {
			s.metrics.SosTriggers.WithLabelValues("rate_limited").Inc()
		}
		return nil, err
	}

	now := time.Now()
	event := &model.SOSEvent{
		ID:                uuid.New(),
		DeviceID:          deviceID,
		Status:            model.SOSStatusActive,
		TriggerType:       triggerType,
		InitialLat:        model.Latitude(lat),
		InitialLng:        model.Longitude(lng),
		TrackingStartedAt: now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.metrics.SosTriggers.WithLabelValues("error").Inc()
		return nil, apperrors.Unavailable("could not record sos event", err)
	}

	point := &model.LocationPoint{
		ID:       uuid.New(),
		EventID:  event.ID,
		DeviceID: deviceID,
		Lat:      event.InitialLat,
		Lng:      event.InitialLng,
	}
	if err := s.locations.Append(ctx, point); err != nil {
		return nil, apperrors.Unavailable("could not record initial location", err)
	}
	s.metrics.LocationPoints.Inc()

	if err := s.devices.UpdateLastLocation(ctx, deviceID, event.InitialLat, event.InitialLng, now); err != nil {
		return nil, apperrors.Unavailable("could not update device location", err)
	}

	if _, err := s.sessions.Start(ctx, event.ID, deviceID); err != nil {
		// The event stands on its own; tracking is best-effort.
		s.logger.Warn().Err(err).Str("event_id", event.ID.String()).Msg("failed to start tracking session")
	} else {
		s.metrics.TrackingSessions.Inc()
	}

	s.metrics.SosTriggers.WithLabelValues("created").Inc()
	s.logger.Info().
		Str("event_id", event.ID.String()).
		Str("device_id", deviceID).
		Str("trigger_type", string(triggerType)).
		Msg("sos event created")

	return event, nil
}

func (s *service) Resolve(ctx context.Context, eventID uuid.UUID) (*model.SOSEvent, error) {
	event, err := s.close(ctx, eventID, model.SOSStatusResolved)
	if err == nil {
		s.metrics.SosResolved.Inc()
	}
	return event, err
}

func (s *service) Cancel(ctx context.Context, eventID uuid.UUID) (*model.SOSEvent, error) {
	event, err := s.close(ctx, eventID, model.SOSStatusCancelled)
	if err == nil {
		s.metrics.SosCancelled.Inc()
	}
	return event, err
}

func (s *service) close(ctx context.Context, eventID uuid.UUID, status model.SOSStatus) (*model.SOSEvent, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status.Terminal() {
		return nil, apperrors.BadRequest("sos event is already "+string(event.Status), nil)
	}

	now := time.Now()
	if err := s.events.UpdateStatus(ctx, eventID, status, &now); err != nil {
		return nil, apperrors.Unavailable("could not update sos event", err)
	}
	event.Status = status
	event.ResolvedAt = &now

	if stopped, err := s.sessions.Stop(ctx, eventID); err != nil {
		s.logger.Warn().Err(err).Str("event_id", eventID.String()).Msg("failed to stop tracking session")
	} else if stopped {
		s.metrics.TrackingSessions.Dec()
	}

	if s.publisher != nil {
		s.publisher.CloseEvent(eventID)
	}

	s.logger.Info().
		Str("event_id", eventID.String()).
		Str("status", string(status)).
		Msg("sos event closed")

	return event, nil
}

// UpdateLocation appends a point to the event's trail. It returns
// (nil, nil) when the event is missing or no longer active.
func (s *service) UpdateLocation(ctx context.Context, eventID uuid.UUID, deviceID string, lat, lng float64, accuracy *float64) (*model.LocationPoint, error) {
	event, err := s.events.Get(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Unavailable("could not load sos event", err)
	}
	if event.Status != model.SOSStatusActive {
		return nil, nil
	}

	now := time.Now()
	point := &model.LocationPoint{
		ID:       uuid.New(),
		EventID:  eventID,
		DeviceID: deviceID,
		Lat:      model.Latitude(lat),
		Lng:      model.Longitude(lng),
		Accuracy: accuracy,
	}
	if err := s.locations.Append(ctx, point); err != nil {
		return nil, apperrors.Unavailable("could not record location", err)
	}
	s.metrics.LocationPoints.Inc()

	if err := s.devices.UpdateLastLocation(ctx, deviceID, point.Lat, point.Lng, now); err != nil {
		return nil, apperrors.Unavailable("could not update device location", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(eventID, point)
	}

	return point, nil
}

func (s *service) Get(ctx context.Context, eventID uuid.UUID) (*model.SOSEvent, error) {
	return s.getEvent(ctx, eventID)
}

func (s *service) ActiveEvents(ctx context.Context, deviceID string) ([]*model.SOSEvent, error) {
	events, err := s.events.ListActiveByDevice(ctx, deviceID)
	if err != nil {
		return nil, apperrors.Unavailable("could not list sos events", err)
	}
	return events, nil
}

func (s *service) LocationHistory(ctx context.Context, eventID uuid.UUID) ([]*model.LocationPoint, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	points, err := s.locations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperrors.Unavailable("could not load location history", err)
	}
	return points, nil
}

func (s *service) QueueOffline(ctx context.Context, deviceID string, lat, lng float64) (*model.OfflineSOS, error) {
	item := &model.OfflineSOS{
		ID:       uuid.New(),
		DeviceID: deviceID,
		Lat:      model.Latitude(lat),
		Lng:      model.Longitude(lng),
		Status:   model.OfflineStatusPending,
	}
	if err := s.offline.Create(ctx, item); err != nil {
		return nil, apperrors.Unavailable("could not queue offline sos", err)
	}
	return item, nil
}

func (s *service) PendingOffline(ctx context.Context, deviceID string) ([]*model.OfflineSOS, error) {
	items, err := s.offline.ListPendingByDevice(ctx, deviceID)
	if err != nil {
		return nil, apperrors.Unavailable("could not list offline queue", err)
	}
	return items, nil
}

func (s *service) MarkSynced(ctx context.Context, queueID, eventID uuid.UUID) (*model.OfflineSOS, error) {
	item, err := s.offline.Get(ctx, queueID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("offline sos item", err)
	}
	if err != nil {
		return nil, apperrors.Unavailable("could not load offline sos item", err)
	}

	item.Status = model.OfflineStatusSynced
	item.EventID = &eventID
	if err := s.offline.Update(ctx, item); err != nil {
		return nil, apperrors.Unavailable("could not update offline sos item", err)
	}
	return item, nil
}

// SyncOffline drains the device's pending offline queue through the
// normal trigger path. Items rejected by the trigger (rate limiting
// included) are marked failed with their retry count incremented.
func (s *service) SyncOffline(ctx context.Context, deviceID string) ([]*model.OfflineSOS, error) {
	pending, err := s.offline.ListPendingByDevice(ctx, deviceID)
	if err != nil {
		return nil, apperrors.Unavailable("could not list offline queue", err)
	}

	out := make([]*model.OfflineSOS, 0, len(pending))
	for _, item := range pending {
		event, err := s.Trigger(ctx, deviceID, float64(item.Lat), float64(item.Lng), model.TriggerOffline)
		if err != nil {
			item.Status = model.OfflineStatusFailed
			item.RetryCount++
			s.logger.Warn().Err(err).
				Str("queue_id", item.ID.String()).
				Msg("offline sos sync rejected")
		} else {
			item.Status = model.OfflineStatusSynced
			item.EventID = &event.ID
		}
		if err := s.offline.Update(ctx, item); err != nil {
			return out, apperrors.Unavailable("could not update offline sos item", err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *service) getEvent(ctx context.Context, eventID uuid.UUID) (*model.SOSEvent, error) {
	event, err := s.events.Get(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("sos event", err)
	}
	if err != nil {
		return nil, apperrors.Unavailable("could not load sos event", err)
	}
	return event, nil
}
