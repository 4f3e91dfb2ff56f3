package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session records who is actively observing a given SOS event's
// location updates. Sessions are ephemeral: they live in the store for
// the duration of an event and are swept when stale.
type Session struct {
	EventID     uuid.UUID `json:"event_id"`
	DeviceID    string    `json:"device_id"`
	Subscribers []string  `json:"subscribers"`
	StartedAt   time.Time `json:"started_at"`
}

// Store is the injectable session store. The memory implementation
// serves a single process; the Redis implementation shares sessions
// across instances.
type Store interface {
	// Start creates a session for the event, replacing any existing one.
	Start(ctx context.Context, eventID uuid.UUID, deviceID string) (*Session, error)
	// Stop removes the session, reporting whether one existed.
	Stop(ctx context.Context, eventID uuid.UUID) (bool, error)
	// Get returns the session, or nil when absent.
	Get(ctx context.Context, eventID uuid.UUID) (*Session, error)
	// AddSubscriber registers an observer; false when no session exists.
	AddSubscriber(ctx context.Context, eventID uuid.UUID, subscriberID string) (bool, error)
	// RemoveSubscriber is a no-op false when the session is absent.
	RemoveSubscriber(ctx context.Context, eventID uuid.UUID, subscriberID string) (bool, error)
	Subscribers(ctx context.Context, eventID uuid.UUID) ([]string, error)
	All(ctx context.Context) ([]*Session, error)
	ByDevice(ctx context.Context, deviceID string) ([]*Session, error)
	// SweepExpired removes sessions older than maxAge and returns the
	// number removed.
	SweepExpired(ctx context.Context, maxAge time.Duration) (int, error)
}
