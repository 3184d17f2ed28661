package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robertarktes/airline-booking-bff/internal/session"
)

// Field names mirror the keys the browser used to keep in local storage.
const (
	fieldToken    = "token"
	fieldTenant   = "tenantId"
	fieldLanguage = "language"
)

type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *SessionStore) Create(ctx context.Context, sess session.Session) (session.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	key := sessionKey(sess.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fieldToken, sess.Token, fieldTenant, sess.TenantID, fieldLanguage, sess.Language)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return session.Session{}, errors.Wrap(err, "store session")
	}
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	vals, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return session.Session{}, errors.Wrap(err, "load session")
	}
	if len(vals) == 0 {
		return session.Session{}, session.ErrNotFound
	}
	return session.Session{
		ID:       id,
		Token:    vals[fieldToken],
		TenantID: vals[fieldTenant],
		Language: vals[fieldLanguage],
	}, nil
}

func (s *SessionStore) SetLanguage(ctx context.Context, id, language string) error {
	key := sessionKey(id)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "set language")
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return errors.Wrap(s.client.HSet(ctx, key, fieldLanguage, language).Err(), "set language")
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(s.client.Del(ctx, sessionKey(id)).Err(), "delete session")
}
