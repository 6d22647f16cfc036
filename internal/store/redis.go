package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/interview-partner/backend/internal/config"
	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
)

const (
	sessionKeyPrefix = "session:"
	defaultTTL       = 24 * time.Hour
)

// RedisStore keeps each session as one JSON value with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisStoreFromConfig dials Redis and verifies connectivity.
func NewRedisStoreFromConfig(ctx context.Context, cfg config.StoreConfig) (*RedisStore, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("%w: REDIS_ADDR is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisStore(client, cfg.SessionTTL), nil
}

func (s *RedisStore) key(id string) string {
	return sessionKeyPrefix + id
}

// Create implements Repository.
func (s *RedisStore) Create(ctx context.Context, session *interview.Session) error {
	stampCreated(session)

	val, err := encodeSession(session)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, s.key(session.ID), val, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session %s: %w", session.ID, err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

// Get implements Repository. Reads refresh the TTL.
func (s *RedisStore) Get(ctx context.Context, id string) (*interview.Session, error) {
	key := s.key(id)
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	session, err := decodeSession(val)
	if err != nil {
		return nil, err
	}

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		log.Printf("[store] refresh ttl for session=%s failed: %v", id, err)
	}
	return session, nil
}

// Update implements Repository using WATCH/MULTI/EXEC.
func (s *RedisStore) Update(ctx context.Context, session *interview.Session) error {
	key := s.key(session.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		stored, err := decodeSession(val)
		if err != nil {
			return err
		}
		if stored.Version != session.Version {
			return ErrVersionConflict
		}

		next := session.Clone()
		next.Version++
		next.UpdatedAt = time.Now().UTC()

		newVal, err := encodeSession(next)
		if err != nil {
			return err
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		}); err != nil {
			return err
		}

		session.Version = next.Version
		session.UpdatedAt = next.UpdatedAt
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

// Delete implements Repository.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Repository.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
