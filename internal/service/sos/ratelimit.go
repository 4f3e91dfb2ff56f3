package sos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
	apperrors "github.com/raksha-app/sos-api/pkg/errors"
)

// Window policy: a device may trigger maxTriggersPerWindow times per
// rolling window; exceeding it blocks the device for blockDuration. A
// check past the window start opens a fresh window; a check past
// blocked_until clears the block.
const (
	maxTriggersPerWindow = 3
	windowDuration       = 15 * time.Minute
	blockDuration        = time.Hour
)

type rateLimiter struct {
	repo repository.RateLimitRepository
}

func newRateLimiter(repo repository.RateLimitRepository) *rateLimiter {
	return &rateLimiter{repo: repo}
}

// allow consumes one trigger from the device's window. It returns a
// RateLimited error when the device is blocked, Unavailable when the
// backing store cannot be reached.
func (l *rateLimiter) allow(ctx context.Context, deviceID string) error {
	now := time.Now()

	record, err := l.repo.Get(ctx, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		record = &model.SOSRateLimit{
			DeviceID:    deviceID,
			SOSCount:    1,
			WindowStart: now,
		}
		if err := l.repo.Upsert(ctx, record); err != nil {
			return apperrors.Unavailable("rate limit store unavailable", err)
		}
		return nil
	}
	if err != nil {
		return apperrors.Unavailable("rate limit store unavailable", err)
	}

	if record.IsBlocked {
		if record.BlockedUntil != nil && record.BlockedUntil.After(now) {
			return apperrors.RateLimited("too many SOS triggers, device temporarily blocked", nil)
		}
		// Block elapsed: clear it and open a fresh window.
		record.IsBlocked = false
		record.BlockedUntil = nil
		record.SOSCount = 1
		record.WindowStart = now
		if err := l.repo.Upsert(ctx, record); err != nil {
			return apperrors.Unavailable("rate limit store unavailable", err)
		}
		return nil
	}

	if now.Sub(record.WindowStart) > windowDuration {
		record.SOSCount = 1
		record.WindowStart = now
		if err := l.repo.Upsert(ctx, record); err != nil {
			return apperrors.Unavailable("rate limit store unavailable", err)
		}
		return nil
	}

	record.SOSCount++
	if record.SOSCount > maxTriggersPerWindow {
		until := now.Add(blockDuration)
		record.IsBlocked = true
		record.BlockedUntil = &until
		if err := l.repo.Upsert(ctx, record); err != nil {
			return apperrors.Unavailable("rate limit store unavailable", err)
		}
		return apperrors.RateLimited("too many SOS triggers, device temporarily blocked", nil)
	}

	if err := l.repo.Upsert(ctx, record); err != nil {
		return apperrors.Unavailable("rate limit store unavailable", err)
	}
	return nil
}
