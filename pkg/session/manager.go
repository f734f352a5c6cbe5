// Package session serializes access to session documents. Concurrent
// messages for the same key are processed one at a time; messages for
// different keys run in parallel. This is the most important invariant of
// the whole design: a lost update here silently advances or rewinds a
// user's conversation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/konvo/konvo/internal/logging"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.Locker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.Locker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock safety-valve TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes fn while holding the per-key lock (and the distributed
// lock when configured).
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// UpdateFunc mutates a session document. It receives the current document
// (a fresh one when the key is unknown or expired) and returns the document
// to persist, or nil to leave the store untouched.
type UpdateFunc func(ctx context.Context, s *domain.Session) (*domain.Session, error)

// Update runs a read-modify-write cycle under the per-key lock. The read
// always hits the store, never a cached copy, so each cycle observes the
// write of the immediately preceding message for the same key.
func (m *Manager) Update(ctx context.Context, ch domain.Channel, fn UpdateFunc) error {
	key := ch.Key()
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		current, err := m.store.Get(ctx, key)
		if errors.Is(err, domain.ErrSessionNotFound) {
			current = domain.NewSession(ch)
		} else if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		next, err := fn(ctx, current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if err := m.store.Save(ctx, key, next); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		return nil
	})
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, key string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		s, err = m.store.Get(ctx, key)
		return err
	})
	return s, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// Touch refreshes the session TTL.
func (m *Manager) Touch(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Touch(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}
