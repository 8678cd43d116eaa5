package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-admin-console/internal/domain"
)

const sessionPrefix = "console:session:"

// SessionStore keeps console sessions in Redis as JSON so every instance sees
// the same sign-ins. Keys expire together with the session.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

// NewSessionStore uses ttl for sessions that carry no expiry.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, clock: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := s.ttl
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.clock())
		if ttl < time.Second {
			ttl = time.Second
		}
	}
	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// PurgeExpired removes sessions whose recorded expiry has passed but whose key
// is still alive, e.g. after a clock change.
func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	purged := 0
	iter := s.client.Scan(ctx, 0, sessionPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		session, err := s.Get(ctx, key[len(sessionPrefix):])
		if err != nil {
			continue
		}
		if session.Expired(now) {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return purged, fmt.Errorf("purge session: %w", err)
			}
			purged++
		}
	}
	if err := iter.Err(); err != nil {
		return purged, fmt.Errorf("scan sessions: %w", err)
	}
	return purged, nil
}

func (s *SessionStore) key(id string) string {
	return sessionPrefix + id
}
