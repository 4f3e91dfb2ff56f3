package tracking

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksha-app/sos-api/internal/model"
)

func testPoint(eventID uuid.UUID) *model.LocationPoint {
	return &model.LocationPoint{
		ID:      uuid.New(),
		EventID: eventID,
		Lat:     model.Latitude(12.9716),
		Lng:     model.Longitude(77.5946),
	}
}

func TestFeedPublishDeliversToSubscribers(t *testing.T) {
	feed := NewFeed(zerolog.Nop())
	eventID := uuid.New()

	sub := feed.register(eventID, "watcher-1")
	feed.Publish(eventID, testPoint(eventID))

	select {
	case payload := <-sub.send:
		assert.Contains(t, string(payload), `"type":"location"`)
	default:
		t.Fatal("expected a queued location message")
	}
}

func TestFeedCloseEventClosesSubscriberChannels(t *testing.T) {
	feed := NewFeed(zerolog.Nop())
	eventID := uuid.New()

	sub := feed.register(eventID, "watcher-1")
	feed.CloseEvent(eventID)

	_, ok := <-sub.send
	require.False(t, ok, "expected channel closed after event close")

	// Publishing after the close must not panic or re-deliver.
	feed.Publish(eventID, testPoint(eventID))
}

func TestFeedUnregisterIsIdempotent(t *testing.T) {
	feed := NewFeed(zerolog.Nop())
	eventID := uuid.New()

	sub := feed.register(eventID, "watcher-1")
	feed.unregister(eventID, sub)
	feed.unregister(eventID, sub)
	feed.CloseEvent(eventID)
}

func TestFeedPublishRacesCloseEvent(t *testing.T) {
	feed := NewFeed(zerolog.Nop())
	eventID := uuid.New()
	point := testPoint(eventID)

	for i := 0; i < 200; i++ {
		feed.register(eventID, uuid.New().String())
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			feed.Publish(eventID, point)
		}
	}()
	go func() {
		defer wg.Done()
		feed.CloseEvent(eventID)
	}()
	wg.Wait()

	feed.mu.RLock()
	defer feed.mu.RUnlock()
	assert.Empty(t, feed.subs[eventID])
}
