package worker

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/tracking"
	"github.com/raksha-app/sos-api/pkg/metrics"
)

type fakeEventRepo struct {
	events map[uuid.UUID]*model.SOSEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*model.SOSEvent)}
}

func (r *fakeEventRepo) Create(_ context.Context, event *model.SOSEvent) error {
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) Get(_ context.Context, id uuid.UUID) (*model.SOSEvent, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.SOSStatus, resolvedAt *time.Time) error {
	event, ok := r.events[id]
	if !ok {
		return sql.ErrNoRows
	}
	event.Status = status
	event.ResolvedAt = resolvedAt
	event.UpdatedAt = time.Now()
	return nil
}

func (r *fakeEventRepo) UpdateNotificationsSent(_ context.Context, id uuid.UUID, count int) error {
	event, ok := r.events[id]
	if !ok {
		return sql.ErrNoRows
	}
	event.NotificationsSent = count
	return nil
}

func (r *fakeEventRepo) ListActiveByDevice(_ context.Context, deviceID string) ([]*model.SOSEvent, error) {
	var out []*model.SOSEvent
	for _, event := range r.events {
		if event.DeviceID == deviceID && event.Status == model.SOSStatusActive {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListStaleActive(_ context.Context, cutoff time.Time) ([]*model.SOSEvent, error) {
	var out []*model.SOSEvent
	for _, event := range r.events {
		if event.Status == model.SOSStatusActive && event.UpdatedAt.Before(cutoff) {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func TestExpireStaleClosesEventsAndSessions(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	sessions := tracking.NewMemoryStore()
	m := metrics.New(prometheus.NewRegistry())

	staleID := uuid.New()
	repo.events[staleID] = &model.SOSEvent{
		ID:        staleID,
		DeviceID:  "d1",
		Status:    model.SOSStatusActive,
		UpdatedAt: time.Now().Add(-2 * time.Hour),
	}
	_, err := sessions.Start(ctx, staleID, "d1")
	require.NoError(t, err)

	freshID := uuid.New()
	repo.events[freshID] = &model.SOSEvent{
		ID:        freshID,
		DeviceID:  "d2",
		Status:    model.SOSStatusActive,
		UpdatedAt: time.Now(),
	}

	w := NewEventExpiryWorker(repo, sessions, time.Hour, time.Minute, m, zerolog.Nop())
	require.NoError(t, w.expireStale(ctx))

	expired := repo.events[staleID]
	assert.Equal(t, model.SOSStatusExpired, expired.Status)
	assert.Nil(t, expired.ResolvedAt, "expiry is not an explicit close")

	session, err := sessions.Get(ctx, staleID)
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.Equal(t, model.SOSStatusActive, repo.events[freshID].Status)
}
