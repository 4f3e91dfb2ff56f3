package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memorySession struct {
	deviceID    string
	subscribers map[string]struct{}
	startedAt   time.Time
}

// MemoryStore keeps sessions in a process-local map. Suitable for a
// single-instance deployment; sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*memorySession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*memorySession),
	}
}

func (s *MemoryStore) Start(_ context.Context, eventID uuid.UUID, deviceID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &memorySession{
		deviceID:    deviceID,
		subscribers: make(map[string]struct{}),
		startedAt:   time.Now(),
	}
	s.sessions[eventID] = sess
	return toSession(eventID, sess), nil
}

func (s *MemoryStore) Stop(_ context.Context, eventID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[eventID]; !ok {
		return false, nil
	}
	delete(s.sessions, eventID)
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, eventID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[eventID]
	if !ok {
		return nil, nil
	}
	return toSession(eventID, sess), nil
}

func (s *MemoryStore) AddSubscriber(_ context.Context, eventID uuid.UUID, subscriberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[eventID]
	if !ok {
		return false, nil
	}
	sess.subscribers[subscriberID] = struct{}{}
	return true, nil
}

func (s *MemoryStore) RemoveSubscriber(_ context.Context, eventID uuid.UUID, subscriberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[eventID]
	if !ok {
		return false, nil
	}
	delete(sess.subscribers, subscriberID)
	return true, nil
}

func (s *MemoryStore) Subscribers(_ context.Context, eventID uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[eventID]
	if !ok {
		return nil, nil
	}
	subs := make([]string, 0, len(sess.subscribers))
	for id := range sess.subscribers {
		subs = append(subs, id)
	}
	return subs, nil
}

func (s *MemoryStore) All(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		out = append(out, toSession(id, sess))
	}
	return out, nil
}

func (s *MemoryStore) ByDevice(_ context.Context, deviceID string) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Session
	for id, sess := range s.sessions {
		if sess.deviceID == deviceID {
			out = append(out, toSession(id, sess))
		}
	}
	return out, nil
}

func (s *MemoryStore) SweepExpired(_ context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, sess := range s.sessions {
		if sess.startedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func toSession(eventID uuid.UUID, sess *memorySession) *Session {
	subs := make([]string, 0, len(sess.subscribers))
	for id := range sess.subscribers {
		subs = append(subs, id)
	}
	return &Session{
		EventID:     eventID,
		DeviceID:    sess.deviceID,
		Subscribers: subs,
		StartedAt:   sess.startedAt,
	}
}
