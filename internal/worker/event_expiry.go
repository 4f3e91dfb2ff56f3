package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
	"github.com/raksha-app/sos-api/internal/tracking"
	"github.com/raksha-app/sos-api/pkg/metrics"
)

// EventExpiryWorker marks events expired once they have been active
// without a location update for longer than maxAge, and stops their
// tracking sessions so storage and the session store converge.
type EventExpiryWorker struct {
	events   repository.SOSEventRepository
	sessions tracking.Store
	maxAge   time.Duration
	interval time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewEventExpiryWorker(events repository.SOSEventRepository, sessions tracking.Store, maxAge, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *EventExpiryWorker {
	return &EventExpiryWorker{
		events:   events,
		sessions: sessions,
		maxAge:   maxAge,
		interval: interval,
		metrics:  m,
		logger:   logger.With().Str("component", "event-expiry").Logger(),
	}
}

func (w *EventExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("starting event expiry worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("shutting down event expiry worker")
			return
		case <-ticker.C:
			if err := w.expireStale(ctx); err != nil {
				w.logger.Error().Err(err).Msg("event expiry pass failed")
			}
		}
	}
}

func (w *EventExpiryWorker) expireStale(ctx context.Context) error {
	cutoff := time.Now().Add(-w.maxAge)
	stale, err := w.events.ListStaleActive(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, event := range stale {
		// resolved_at means explicitly closed; expiry is not a resolution.
		if err := w.events.UpdateStatus(ctx, event.ID, model.SOSStatusExpired, nil); err != nil {
			w.logger.Error().Err(err).
				Str("event_id", event.ID.String()).
				Msg("failed to expire sos event")
			continue
		}
		w.metrics.SosExpired.Inc()

		if _, err := w.sessions.Stop(ctx, event.ID); err != nil {
			w.logger.Warn().Err(err).
				Str("event_id", event.ID.String()).
				Msg("failed to stop tracking session for expired event")
		}

		w.logger.Info().
			Str("event_id", event.ID.String()).
			Str("device_id", event.DeviceID).
			Msg("sos event expired")
	}

	return nil
}
