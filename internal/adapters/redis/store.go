package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/faults"
)

// DefaultTTL bounds the lifetime of a session. Once it elapses the key is
// logically gone and the next contact starts a fresh session.
const DefaultTTL = 30 * time.Minute

const (
	maxAttempts = 3
	baseBackoff = 50 * time.Millisecond
)

// Store implements ports.SessionStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL overrides the session expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "konvo:session:",
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(sessionKey string) string {
	return s.prefix + sessionKey
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the document atomically and refreshes its TTL.
// A serialization failure is fatal (system fault), never coerced or retried.
func (s *Store) Save(ctx context.Context, key string, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return faults.System("store", "save", "serialization", err)
	}

	return s.withRetry(ctx, "save", func() error {
		pipe := s.client.Pipeline()
		pipe.Set(ctx, s.key(key), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{
			Score:  float64(time.Now().Add(s.ttl).Unix()),
			Member: key,
		})
		_, err := pipe.Exec(ctx)
		return err
	})
}

// Get retrieves the document. An expired or missing key yields
// domain.ErrSessionNotFound, never a stale document.
func (s *Store) Get(ctx context.Context, key string) (*domain.Session, error) {
	var val string
	err := s.withRetry(ctx, "get", func() error {
		var err error
		val, err = s.client.Get(ctx, s.key(key)).Result()
		return err
	})
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, faults.System("store", "get", "serialization", err)
	}
	return &sess, nil
}

// Touch refreshes the TTL without rewriting the document.
func (s *Store) Touch(ctx context.Context, key string) error {
	return s.withRetry(ctx, "touch", func() error {
		ok, err := s.client.Expire(ctx, s.key(key), s.ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrSessionNotFound
		}
		return s.client.ZAdd(ctx, s.indexKey(), backend.Z{
			Score:  float64(time.Now().Add(s.ttl).Unix()),
			Member: key,
		}).Err()
	})
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.withRetry(ctx, "delete", func() error {
		pipe := s.client.Pipeline()
		pipe.Del(ctx, s.key(key))
		pipe.ZRem(ctx, s.indexKey(), key)
		_, err := pipe.Exec(ctx)
		return err
	})
}

// List returns live session keys, lazily pruning expired index entries.
// The index is advisory; the document key's own TTL is authoritative, so
// entries whose document already expired are dropped here too.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	candidates, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	keys := make([]string, 0, len(candidates))
	for _, key := range candidates {
		exists, err := s.client.Exists(ctx, s.key(key)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check session %q: %w", key, err)
		}
		if exists == 0 {
			_ = s.client.ZRem(ctx, s.indexKey(), key).Err()
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// withRetry runs op with bounded exponential backoff. Misses (redis.Nil) and
// context cancellation are returned immediately; only transient connection
// trouble is retried. Exhausted retries surface as a system fault.
func (s *Store) withRetry(ctx context.Context, opName string, op func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(baseBackoff << (attempt - 1)):
			}
		}
		err = op()
		if err == nil || errors.Is(err, backend.Nil) ||
			errors.Is(err, domain.ErrSessionNotFound) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return faults.System("store", opName, "unavailable", err)
}
