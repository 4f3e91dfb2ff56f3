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

type offlineRepository struct {
	db *sqlx.DB
}

func NewOfflineRepository(db *sqlx.DB) repository.OfflineRepository {
	return &offlineRepository{db: db}
}

func (r *offlineRepository) Create(ctx context.Context, item *model.OfflineSOS) error {
	query := `
		INSERT INTO offline_sos_queue (id, device_id, lat, lng, status, retry_count, event_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.DeviceID,
		item.Lat,
		item.Lng,
		item.Status,
		item.RetryCount,
		item.EventID,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create offline sos item: %w", err)
	}
	return nil
}

func (r *offlineRepository) Get(ctx context.Context, id uuid.UUID) (*model.OfflineSOS, error) {
	query := `SELECT * FROM offline_sos_queue WHERE id = $1`
	var item model.OfflineSOS
	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get offline sos item: %w", err)
	}
	return &item, nil
}

func (r *offlineRepository) Update(ctx context.Context, item *model.OfflineSOS) error {
	query := `
		UPDATE offline_sos_queue
		SET status = $1, retry_count = $2, event_id = $3, updated_at = $4
		WHERE id = $5
	`
	item.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		item.Status, item.RetryCount, item.EventID, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update offline sos item: %w", err)
	}
	return nil
}

func (r *offlineRepository) ListPendingByDevice(ctx context.Context, deviceID string) ([]*model.OfflineSOS, error) {
	query := `SELECT * FROM offline_sos_queue WHERE device_id = $1 AND status = $2 ORDER BY created_at ASC`
	var items []*model.OfflineSOS
	err := r.db.SelectContext(ctx, &items, query, deviceID, model.OfflineStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending offline sos items: %w", err)
	}
	return items, nil
}
