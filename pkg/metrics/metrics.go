package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// SOS lifecycle
	SosTriggers    *prometheus.CounterVec
	SosResolved    prometheus.Counter
	SosCancelled   prometheus.Counter
	SosExpired     prometheus.Counter
	LocationPoints prometheus.Counter

	// Notification fan-out
	NotificationAttempts *prometheus.CounterVec
	FanoutLatency        prometheus.Histogram

	// Tracking sessions
	TrackingSessions prometheus.Gauge
	SessionsSwept    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SosTriggers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sos_triggers_total",
			Help: "SOS trigger attempts by result (created, rate_limited, error)",
		}, []string{"result"}),
		SosResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "sos_events_resolved_total",
			Help: "SOS events resolved",
		}),
		SosCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "sos_events_cancelled_total",
			Help: "SOS events cancelled",
		}),
		SosExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "sos_events_expired_total",
			Help: "SOS events expired by the background worker",
		}),
		LocationPoints: factory.NewCounter(prometheus.CounterOpts{
			Name: "sos_location_points_total",
			Help: "Location points appended to event trails",
		}),
		NotificationAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sos_notifications_total",
			Help: "Notification attempts by channel and status",
		}, []string{"channel", "status"}),
		FanoutLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sos_notification_fanout_seconds",
			Help:    "Duration of a full notification fan-out pass",
			Buckets: prometheus.DefBuckets,
		}),
		TrackingSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sos_tracking_sessions",
			Help: "Tracking sessions currently held in the session store",
		}),
		SessionsSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "sos_tracking_sessions_swept_total",
			Help: "Stale tracking sessions removed by the sweeper",
		}),
	}
}
