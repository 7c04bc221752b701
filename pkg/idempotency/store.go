// Package idempotency remembers the response of a request carrying an
// Idempotency-Key so that a retried POST does not create a second row.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is a stored response.
type Record struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// State describes what Acquire found under a key.
type State int

const (
	// Acquired means the caller now owns the key and must Save or Release it.
	Acquired State = iota
	// InFlight means another request holds the key and has not finished.
	InFlight
	// Completed means a response is stored and should be replayed.
	Completed
)

// Store is the persistence behind the idempotency middleware.
type Store interface {
	Acquire(ctx context.Context, key string, lockTTL time.Duration) (State, *Record, error)
	Save(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

const pendingMarker = "pending"

// RedisStore keeps keys under "<prefix><key>". A pending marker is written
// with SET NX while the first request runs and replaced by the JSON record
// once it completes.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Acquire(ctx context.Context, key string, lockTTL time.Duration) (State, *Record, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), pendingMarker, lockTTL).Result()
	if err != nil {
		return 0, nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if ok {
		return Acquired, nil, nil
	}

	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// Expired between SETNX and GET; treat as still running so the
		// client retries instead of racing a second insert.
		return InFlight, nil, nil
	case err != nil:
		return 0, nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if string(raw) == pendingMarker {
		return InFlight, nil, nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return Completed, &rec, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save idempotency record: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
