package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robertarktes/airline-booking-bff/internal/booking"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
)

const maxUpdateRetries = 5

type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: ttl}
}

func attemptKey(id uuid.UUID) string {
	return "attempt:" + id.String()
}

func (s *AttemptStore) Create(ctx context.Context, a booking.Attempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, attemptKey(a.ID), data, s.ttl).Result()
	if err != nil {
		return errors.Wrap(err, "store attempt")
	}
	if !ok {
		return domain.ErrConflict
	}
	return nil
}

func (s *AttemptStore) Get(ctx context.Context, id uuid.UUID) (booking.Attempt, error) {
	data, err := s.client.Get(ctx, attemptKey(id)).Bytes()
	if err == redis.Nil {
		return booking.Attempt{}, domain.ErrNotFound
	}
	if err != nil {
		return booking.Attempt{}, errors.Wrap(err, "load attempt")
	}
	var a booking.Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		return booking.Attempt{}, errors.Wrap(err, "decode attempt")
	}
	return a, nil
}

// Update runs fn under WATCH so concurrent writers of the same attempt
// serialize; a lost race is retried with the fresh value.
func (s *AttemptStore) Update(ctx context.Context, id uuid.UUID, fn func(a *booking.Attempt) error) (booking.Attempt, error) {
	key := attemptKey(id)
	var updated booking.Attempt

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		var a booking.Attempt
		if err := json.Unmarshal(data, &a); err != nil {
			return errors.Wrap(err, "decode attempt")
		}
		if err := fn(&a); err != nil {
			return err
		}
		a.Version++
		out, err := json.Marshal(a)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, redis.KeepTTL)
			return nil
		})
		if err == nil {
			updated = a
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return booking.Attempt{}, err
		}
		return updated, nil
	}
	return booking.Attempt{}, errors.Wrapf(domain.ErrConflict, "attempt %s updated concurrently", id)
}

func (s *AttemptStore) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.Wrap(s.client.Del(ctx, attemptKey(id)).Err(), "delete attempt")
}
