package tracking

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raksha-app/sos-api/internal/model"
)

const sendBuffer = 16

// Message is the frame pushed to live observers.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

type subscriber struct {
	id   string
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// push queues the payload for delivery. It returns false when the
// subscriber's buffer is full. Pushing to a closed subscriber is a
// no-op, so a publish racing a disconnect cannot hit a closed channel.
func (s *subscriber) push(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// Feed fans location updates out to the websocket subscribers of each
// event. It implements sos.LocationPublisher. Delivery is best-effort:
// a subscriber that cannot keep up is dropped.
type Feed struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*subscriber]struct{}
	logger zerolog.Logger
}

func NewFeed(logger zerolog.Logger) *Feed {
	return &Feed{
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
		logger: logger.With().Str("component", "tracking-feed").Logger(),
	}
}

func (f *Feed) Publish(eventID uuid.UUID, point *model.LocationPoint) {
	payload, err := json.Marshal(Message{
		Type:      "location",
		Data:      point,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to marshal location message")
		return
	}

	f.mu.RLock()
	subs := make([]*subscriber, 0, len(f.subs[eventID]))
	for sub := range f.subs[eventID] {
		subs = append(subs, sub)
	}
	f.mu.RUnlock()

	for _, sub := range subs {
		if !sub.push(payload) {
			f.drop(eventID, sub)
		}
	}
}

// CloseEvent disconnects every subscriber of the event.
func (f *Feed) CloseEvent(eventID uuid.UUID) {
	f.mu.Lock()
	subs := f.subs[eventID]
	delete(f.subs, eventID)
	f.mu.Unlock()

	for sub := range subs {
		sub.close()
	}
}

func (f *Feed) register(eventID uuid.UUID, id string) *subscriber {
	sub := &subscriber{
		id:   id,
		send: make(chan []byte, sendBuffer),
	}

	f.mu.Lock()
	if f.subs[eventID] == nil {
		f.subs[eventID] = make(map[*subscriber]struct{})
	}
	f.subs[eventID][sub] = struct{}{}
	f.mu.Unlock()

	return sub
}

func (f *Feed) unregister(eventID uuid.UUID, sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if set, ok := f.subs[eventID]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			sub.close()
		}
		if len(set) == 0 {
			delete(f.subs, eventID)
		}
	}
}

func (f *Feed) drop(eventID uuid.UUID, sub *subscriber) {
	f.logger.Warn().
		Str("event_id", eventID.String()).
		Str("subscriber_id", sub.id).
		Msg("subscriber too slow, dropping")
	f.unregister(eventID, sub)
}
