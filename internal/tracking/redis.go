package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyIndex      = "tracking:sessions"
	keySessionFmt = "tracking:session:%s"
	keySubsFmt    = "tracking:subs:%s"

	// Safety TTL so abandoned keys cannot outlive the sweeper forever.
	sessionTTL = 48 * time.Hour
)

// RedisStore shares tracking sessions across instances. Sessions
// survive a process restart, unlike the memory store.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sessionKey(eventID uuid.UUID) string { return fmt.Sprintf(keySessionFmt, eventID) }
func subsKey(eventID uuid.UUID) string    { return fmt.Sprintf(keySubsFmt, eventID) }

func (s *RedisStore) Start(ctx context.Context, eventID uuid.UUID, deviceID string) (*Session, error) {
	now := time.Now()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, subsKey(eventID))
	pipe.HSet(ctx, sessionKey(eventID), map[string]interface{}{
		"device_id":  deviceID,
		"started_at": now.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, sessionKey(eventID), sessionTTL)
	pipe.SAdd(ctx, keyIndex, eventID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to start tracking session: %w", err)
	}

	return &Session{
		EventID:     eventID,
		DeviceID:    deviceID,
		Subscribers: []string{},
		StartedAt:   now,
	}, nil
}

func (s *RedisStore) Stop(ctx context.Context, eventID uuid.UUID) (bool, error) {
	existed, err := s.client.Exists(ctx, sessionKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to stop tracking session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(eventID), subsKey(eventID))
	pipe.SRem(ctx, keyIndex, eventID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to stop tracking session: %w", err)
	}
	return existed > 0, nil
}

func (s *RedisStore) Get(ctx context.Context, eventID uuid.UUID) (*Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking session: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	startedAt, err := time.Parse(time.RFC3339Nano, fields["started_at"])
	if err != nil {
		return nil, fmt.Errorf("malformed tracking session %s: %w", eventID, err)
	}

	subs, err := s.client.SMembers(ctx, subsKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session subscribers: %w", err)
	}

	return &Session{
		EventID:     eventID,
		DeviceID:    fields["device_id"],
		Subscribers: subs,
		StartedAt:   startedAt,
	}, nil
}

func (s *RedisStore) AddSubscriber(ctx context.Context, eventID uuid.UUID, subscriberID string) (bool, error) {
	exists, err := s.client.Exists(ctx, sessionKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add subscriber: %w", err)
	}
	if exists == 0 {
		return false, nil
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, subsKey(eventID), subscriberID)
	pipe.Expire(ctx, subsKey(eventID), sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to add subscriber: %w", err)
	}
	return true, nil
}

func (s *RedisStore) RemoveSubscriber(ctx context.Context, eventID uuid.UUID, subscriberID string) (bool, error) {
	exists, err := s.client.Exists(ctx, sessionKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove subscriber: %w", err)
	}
	if exists == 0 {
		return false, nil
	}
	if err := s.client.SRem(ctx, subsKey(eventID), subscriberID).Err(); err != nil {
		return false, fmt.Errorf("failed to remove subscriber: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Subscribers(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	subs, err := s.client.SMembers(ctx, subsKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subs, nil
}

func (s *RedisStore) All(ctx context.Context) ([]*Session, error) {
	ids, err := s.client.SMembers(ctx, keyIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking sessions: %w", err)
	}

	var out []*Session
	for _, id := range ids {
		eventID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		sess, err := s.Get(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			// Key expired out from under the index.
			s.client.SRem(ctx, keyIndex, id)
			continue
		}
		out = append(out, sess)
	}
	return out, nil
}

func (s *RedisStore) ByDevice(ctx context.Context, deviceID string) ([]*Session, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Session
	for _, sess := range all {
		if sess.DeviceID == deviceID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *RedisStore) SweepExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	all, err := s.All(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, sess := range all {
		if sess.StartedAt.Before(cutoff) {
			if _, err := s.Stop(ctx, sess.EventID); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
