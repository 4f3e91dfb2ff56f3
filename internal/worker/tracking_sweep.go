package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/raksha-app/sos-api/internal/tracking"
	"github.com/raksha-app/sos-api/pkg/metrics"
)

// TrackingSweepWorker removes tracking sessions that have outlived
// their maximum age.
type TrackingSweepWorker struct {
	store    tracking.Store
	maxAge   time.Duration
	interval time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewTrackingSweepWorker(store tracking.Store, maxAge, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *TrackingSweepWorker {
	return &TrackingSweepWorker{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		metrics:  m,
		logger:   logger.With().Str("component", "tracking-sweep").Logger(),
	}
}

func (w *TrackingSweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("starting tracking sweep worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("shutting down tracking sweep worker")
			return
		case <-ticker.C:
			removed, err := w.store.SweepExpired(ctx, w.maxAge)
			if err != nil {
				w.logger.Error().Err(err).Msg("tracking sweep failed")
				continue
			}
			if removed > 0 {
				w.metrics.SessionsSwept.Add(float64(removed))
				w.metrics.TrackingSessions.Sub(float64(removed))
				w.logger.Info().Int("removed", removed).Msg("swept stale tracking sessions")
			}
		}
	}
}
