package memory

import (
	"context"
	"sync"
	"time"

	"github.com/konvo/konvo/pkg/domain"
)

type entry struct {
	session   *domain.Session
	expiresAt time.Time
}

// Store implements ports.SessionStore in memory, with the same TTL
// semantics as the redis adapter. Safe for concurrent use. Used by tests
// and the demo wiring.
type Store struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
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

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]entry),
		ttl:  30 * time.Minute,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists a deep copy of the document and refreshes its TTL.
func (s *Store) Save(ctx context.Context, key string, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry{
		session:   sess.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Get retrieves a copy of the document; an expired key reads as not found.
func (s *Store) Get(ctx context.Context, key string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok || s.now().After(e.expiresAt) {
		return nil, domain.ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

// Touch refreshes the TTL without rewriting the document.
func (s *Store) Touch(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || s.now().After(e.expiresAt) {
		return domain.ErrSessionNotFound
	}
	e.expiresAt = s.now().Add(s.ttl)
	s.data[key] = e
	return nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns live session keys, pruning expired entries.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	keys := make([]string, 0, len(s.data))
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}
