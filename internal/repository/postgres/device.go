package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
)

type deviceRepository struct {
	db *sqlx.DB
}

func NewDeviceRepository(db *sqlx.DB) repository.DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) Create(ctx context.Context, device *model.Device) error {
	query := `
		INSERT INTO devices (device_id, name, phone, email, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	device.CreatedAt = time.Now()
	device.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		device.ID,
		device.Name,
		device.Phone,
		device.Email,
		device.Active,
		device.CreatedAt,
		device.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *deviceRepository) Get(ctx context.Context, deviceID string) (*model.Device, error) {
	query := `SELECT * FROM devices WHERE device_id = $1`
	var device model.Device
	err := r.db.GetContext(ctx, &device, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return &device, nil
}

func (r *deviceRepository) Update(ctx context.Context, device *model.Device) error {
	query := `
		UPDATE devices SET name = $1, phone = $2, email = $3, active = $4, updated_at = $5
		WHERE device_id = $6
	`
	device.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		device.Name, device.Phone, device.Email, device.Active, device.UpdatedAt, device.ID)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	return nil
}

func (r *deviceRepository) UpdateLastLocation(ctx context.Context, deviceID string, lat model.Latitude, lng model.Longitude, seenAt time.Time) error {
	query := `
		UPDATE devices SET last_lat = $1, last_lng = $2, last_seen_at = $3, updated_at = $4
		WHERE device_id = $5
	`
	_, err := r.db.ExecContext(ctx, query, lat, lng, seenAt, time.Now(), deviceID)
	if err != nil {
		return fmt.Errorf("failed to update device location: %w", err)
	}
	return nil
}
