package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
)

type rateLimitRepository struct {
	db *sqlx.DB
}

func NewRateLimitRepository(db *sqlx.DB) repository.RateLimitRepository {
	return &rateLimitRepository{db: db}
}

func (r *rateLimitRepository) Get(ctx context.Context, deviceID string) (*model.SOSRateLimit, error) {
	query := `SELECT * FROM sos_rate_limits WHERE device_id = $1`
	var record model.SOSRateLimit
	err := r.db.GetContext(ctx, &record, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limit record: %w", err)
	}
	return &record, nil
}

func (r *rateLimitRepository) Upsert(ctx context.Context, record *model.SOSRateLimit) error {
	query := `
		INSERT INTO sos_rate_limits (device_id, sos_count, window_start, is_blocked, blocked_until, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (device_id) DO UPDATE
		SET sos_count = EXCLUDED.sos_count,
		    window_start = EXCLUDED.window_start,
		    is_blocked = EXCLUDED.is_blocked,
		    blocked_until = EXCLUDED.blocked_until,
		    updated_at = EXCLUDED.updated_at
	`
	record.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		record.DeviceID,
		record.SOSCount,
		record.WindowStart,
		record.IsBlocked,
		record.BlockedUntil,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rate limit record: %w", err)
	}
	return nil
}
