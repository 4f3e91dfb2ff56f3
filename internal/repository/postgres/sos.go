package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
)

type sosEventRepository struct {
	db *sqlx.DB
}

func NewSOSEventRepository(db *sqlx.DB) repository.SOSEventRepository {
	return &sosEventRepository{db: db}
}

func (r *sosEventRepository) Create(ctx context.Context, event *model.SOSEvent) error {
	query := `
		INSERT INTO sos_events (id, device_id, status, trigger_type, initial_lat, initial_lng,
			notifications_sent, tracking_started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.DeviceID,
		event.Status,
		event.TriggerType,
		event.InitialLat,
		event.InitialLng,
		event.NotificationsSent,
		event.TrackingStartedAt,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sos event: %w", err)
	}
	return nil
}

func (r *sosEventRepository) Get(ctx context.Context, id uuid.UUID) (*model.SOSEvent, error) {
	query := `SELECT * FROM sos_events WHERE id = $1`
	var event model.SOSEvent
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sos event: %w", err)
	}
	return &event, nil
}

func (r *sosEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SOSStatus, resolvedAt *time.Time) error {
	query := `UPDATE sos_events SET status = $1, resolved_at = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, status, resolvedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update sos event status: %w", err)
	}
	return nil
}

func (r *sosEventRepository) UpdateNotificationsSent(ctx context.Context, id uuid.UUID, count int) error {
	query := `UPDATE sos_events SET notifications_sent = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, count, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update notifications sent: %w", err)
	}
	return nil
}

func (r *sosEventRepository) ListActiveByDevice(ctx context.Context, deviceID string) ([]*model.SOSEvent, error) {
	query := `SELECT * FROM sos_events WHERE device_id = $1 AND status = $2 ORDER BY created_at DESC`
	var events []*model.SOSEvent
	err := r.db.SelectContext(ctx, &events, query, deviceID, model.SOSStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sos events: %w", err)
	}
	return events, nil
}

func (r *sosEventRepository) ListStaleActive(ctx context.Context, cutoff time.Time) ([]*model.SOSEvent, error) {
	query := `SELECT * FROM sos_events WHERE status = $1 AND updated_at < $2`
	var events []*model.SOSEvent
	err := r.db.SelectContext(ctx, &events, query, model.SOSStatusActive, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sos events: %w", err)
	}
	return events, nil
}

type locationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Append(ctx context.Context, point *model.LocationPoint) error {
	query := `
		INSERT INTO sos_location_history (id, event_id, device_id, lat, lng, accuracy, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	point.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		point.ID,
		point.EventID,
		point.DeviceID,
		point.Lat,
		point.Lng,
		point.Accuracy,
		point.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append location point: %w", err)
	}
	return nil
}

func (r *locationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.LocationPoint, error) {
	query := `SELECT * FROM sos_location_history WHERE event_id = $1 ORDER BY created_at ASC`
	var points []*model.LocationPoint
	err := r.db.SelectContext(ctx, &points, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list location history: %w", err)
	}
	return points, nil
}
