package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dskvich/trip-planner/pkg/domain"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 24 * time.Hour
)

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository stores sessions as JSON values. The TTL is
// refreshed on every read and write.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *redisSessionRepository {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &redisSessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *redisSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Version = 1

	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(s.ID), val, r.ttl).Err(); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	key := r.key(id)

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling session: %w", err)
	}

	// A failed refresh only shortens the session's life.
	_ = r.client.Expire(ctx, key, r.ttl).Err()

	return &s, nil
}

func (r *redisSessionRepository) Update(ctx context.Context, s *domain.Session) error {
	key := r.key(s.ID)

	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("fetching session: %w", err)
		}

		var stored domain.Session
		if err := json.Unmarshal(val, &stored); err != nil {
			return fmt.Errorf("unmarshaling session: %w", err)
		}

		if stored.Version != s.Version {
			return domain.ErrVersionConflict
		}

		next := s.Clone()
		next.Version++
		next.UpdatedAt = time.Now()

		newVal, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshaling session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, r.ttl)
			return nil
		})
		if errors.Is(err, redis.TxFailedErr) {
			return domain.ErrVersionConflict
		}
		if err != nil {
			return err
		}

		s.Version = next.Version
		s.UpdatedAt = next.UpdatedAt
		return nil
	}, key)
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *redisSessionRepository) Close() error {
	return r.client.Close()
}

func (r *redisSessionRepository) key(id string) string {
	return sessionKeyPrefix + id
}
